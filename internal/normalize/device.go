package normalize

import (
	"strings"

	"CampaignIndexer/internal/domain"
)

var (
	iosKeywords     = []string{"ios", "iphone", "ipad", "app store"}
	androidKeywords = []string{"android", "google play", "アンドロイド"}
	pcKeywords      = []string{"pcのみ", "pc限定", "pc"}
)

// ClassifyDevice maps free-form device hints onto the closed platform set.
// It is total: any input, including empty text, yields a valid device. Text
// naming both mobile platforms is a dual-platform offer, reported as All so
// the aggregator keeps it as one record.
func ClassifyDevice(raw string) (domain.Device, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))

	ios := containsAny(text, iosKeywords)
	android := containsAny(text, androidKeywords)

	switch {
	case ios && android:
		return domain.DeviceAll, true
	case ios:
		return domain.DeviceIOS, false
	case android:
		return domain.DeviceAndroid, false
	case containsAny(text, pcKeywords):
		return domain.DevicePC, false
	default:
		return domain.DeviceAll, false
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
