package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"CampaignIndexer/internal/domain"
)

// Cashback is the parsed reward expression.
type Cashback struct {
	Value       float64
	Unit        domain.CashbackUnit
	Display     string
	NeedsReview bool
}

var (
	arrowExpr      = regexp.MustCompile(`(?:[\d,.]+)\s*(?:%|pt|ポイント|P|円)?\s*(?:⇒|→)\s*([\d,.]+)\s*(%|pt|ポイント|P|円)`)
	purchaseExpr   = regexp.MustCompile(`購入金額の\s*([\d,.]+)\s*%`)
	percentExpr    = regexp.MustCompile(`^([\d,.]+)\s*%$`)
	pointExpr      = regexp.MustCompile(`^([\d,.]+)\s*(?:pt|ポイント|P|point)$`)
	yenExpr        = regexp.MustCompile(`^([\d,.]+)\s*円$`)
	maxPrefixExpr  = regexp.MustCompile(`^(?:最大|ちょび)+`)
	invalidMarkers = []string{"要確認", "不明", "なし", "未定", "確認中", "TBD"}
)

// ParseCashback evaluates the ordered reward-expression rules and always
// returns a usable result; text that matches nothing comes back flagged for
// review with a zero value, never an error.
func ParseCashback(raw string) Cashback {
	text := foldCashbackText(raw)

	if text == "" {
		return reviewFallback(raw)
	}
	for _, marker := range invalidMarkers {
		if strings.Contains(text, marker) {
			return reviewFallback(raw)
		}
	}

	// Promotion arrows keep only the boosted right-hand value.
	if m := arrowExpr.FindStringSubmatch(text); m != nil {
		if cb, ok := buildCashback(m[1], unitFromToken(m[2])); ok {
			return cb
		}
		return reviewFallback(raw)
	}

	if m := purchaseExpr.FindStringSubmatch(text); m != nil {
		if cb, ok := buildCashback(m[1], domain.UnitPercent); ok {
			return cb
		}
		return reviewFallback(raw)
	}

	if m := percentExpr.FindStringSubmatch(text); m != nil {
		if cb, ok := buildCashback(m[1], domain.UnitPercent); ok {
			return cb
		}
		return reviewFallback(raw)
	}

	if m := pointExpr.FindStringSubmatch(text); m != nil {
		if cb, ok := buildCashback(m[1], domain.UnitPoint); ok {
			return cb
		}
		return reviewFallback(raw)
	}

	if m := yenExpr.FindStringSubmatch(text); m != nil {
		if cb, ok := buildCashback(m[1], domain.UnitYen); ok {
			return cb
		}
		return reviewFallback(raw)
	}

	return reviewFallback(raw)
}

// foldCashbackText canonicalizes producer text before rule matching:
// full-width digits and signs become ASCII, marketing prefixes are dropped.
func foldCashbackText(raw string) string {
	text := width.Fold.String(strings.TrimSpace(raw))
	text = strings.ReplaceAll(text, "％", "%")
	text = maxPrefixExpr.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func buildCashback(number string, unit domain.CashbackUnit) (Cashback, bool) {
	value, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", ""), 64)
	if err != nil || value < 0 {
		return Cashback{}, false
	}
	if unit == domain.UnitPercent && (value <= 0 || value > 100) {
		return Cashback{}, false
	}

	return Cashback{
		Value:   value,
		Unit:    unit,
		Display: FormatCashback(value, unit),
	}, true
}

func reviewFallback(raw string) Cashback {
	return Cashback{
		Value:       0,
		Unit:        domain.UnitPoint,
		Display:     strings.TrimSpace(raw),
		NeedsReview: true,
	}
}

func unitFromToken(token string) domain.CashbackUnit {
	switch token {
	case "%":
		return domain.UnitPercent
	case "円":
		return domain.UnitYen
	default:
		return domain.UnitPoint
	}
}

// FormatCashback renders the canonical display string for a value/unit pair.
func FormatCashback(value float64, unit domain.CashbackUnit) string {
	switch unit {
	case domain.UnitPercent:
		return trimDecimal(value) + "%"
	case domain.UnitYen:
		return GroupDigits(int64(value)) + "円"
	default:
		return GroupDigits(int64(value)) + "pt"
	}
}

// GroupDigits inserts thousands separators into a non-negative integer.
func GroupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func trimDecimal(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return fmt.Sprintf("%g", value)
}
