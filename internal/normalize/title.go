package normalize

import (
	"regexp"
	"strings"
)

var (
	whitespaceExpr = regexp.MustCompile(`\s+`)
	idSuffixExpr   = regexp.MustCompile(`_\d+$`)
	bracketTagExpr = regexp.MustCompile(`^\[(?:ショップ|サービス|アプリ|その他)\]`)
	rankPrefixExpr = regexp.MustCompile(`^ランク別ポイント増量\S*\s*`)
)

// CleanTitle produces the canonical campaign title: whitespace runs collapse
// to single spaces and scraper noise (rank-boost prefixes, bracket tags,
// trailing ID suffixes) is stripped. An empty result means the record carries
// no usable title and must be dropped by the caller.
func CleanTitle(raw string) string {
	title := whitespaceExpr.ReplaceAllString(strings.TrimSpace(raw), " ")
	title = rankPrefixExpr.ReplaceAllString(title, "")
	title = bracketTagExpr.ReplaceAllString(title, "")
	title = idSuffixExpr.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}
