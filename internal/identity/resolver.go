package identity

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"

	"CampaignIndexer/internal/domain"
)

var redirectExpr = regexp.MustCompile(`/ad_details/redirect/(\d+)`)

// defaultIDPatterns covers the URL shapes of the known point-reward sites.
var defaultIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/ad_details/(\d+)`),
	regexp.MustCompile(`/ad/(\d+)/`),
	regexp.MustCompile(`[?&]site_id=(\d+)`),
}

// Resolver assigns identity keys and content fingerprints. Per-site URL ID
// patterns may extend the defaults when a site uses its own URL shape.
type Resolver struct {
	sitePatterns map[string][]*regexp.Regexp
}

// NewResolver compiles per-site URL ID patterns; invalid patterns are
// ignored so a misconfigured site falls back to the defaults.
func NewResolver(sitePatterns map[string][]string) *Resolver {
	compiled := make(map[string][]*regexp.Regexp, len(sitePatterns))
	for site, patterns := range sitePatterns {
		for _, p := range patterns {
			expr, err := regexp.Compile(p)
			if err != nil {
				continue
			}
			compiled[site] = append(compiled[site], expr)
		}
	}
	return &Resolver{sitePatterns: compiled}
}

// Resolve attaches identity data to every normalized campaign.
func (r *Resolver) Resolve(campaigns []domain.NormalizedCampaign) []domain.IdentifiedCampaign {
	identified := make([]domain.IdentifiedCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		identified = append(identified, domain.IdentifiedCampaign{
			NormalizedCampaign: c,
			IdentityKey:        r.identityKey(c),
			ContentFingerprint: Fingerprint(c),
		})
	}
	return identified
}

// identityKey prefers the site-native ID, then an ID recovered from the URL,
// then a weak hash over title and URL path. The weak form loses continuity
// when the title changes; downstream consumers tolerate the resulting false
// "new" classifications.
func (r *Resolver) identityKey(c domain.NormalizedCampaign) string {
	if c.NativeID != "" {
		return c.SiteID + ":" + c.NativeID
	}

	normalized := NormalizeURL(c.URL)
	if id := r.extractID(c.SiteID, normalized); id != "" {
		return c.SiteID + ":" + id
	}

	return c.SiteID + ":" + hashHex(c.Title+"|"+pathWithoutQuery(normalized))
}

func (r *Resolver) extractID(siteID, rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, expr := range r.sitePatterns[siteID] {
		if m := expr.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	for _, expr := range defaultIDPatterns {
		if m := expr.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// NormalizeURL rewrites redirect-style campaign URLs to their direct form;
// both address the same campaign and must resolve to the same identity.
func NormalizeURL(rawURL string) string {
	return redirectExpr.ReplaceAllString(rawURL, "/ad_details/$1")
}

// Fingerprint hashes the watched fields. Equal fingerprints across snapshots
// mean the campaign did not change for delta purposes.
func Fingerprint(c domain.NormalizedCampaign) string {
	return hashHex(c.Title + "|" + c.CashbackDisplay + "|" + string(c.Device))
}

func hashHex(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

func pathWithoutQuery(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	if parsed.Path != "" {
		return parsed.Path
	}
	return parsed.Host
}
