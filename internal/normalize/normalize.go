package normalize

import (
	"log/slog"

	"CampaignIndexer/internal/domain"
)

// Result bundles the surviving campaigns with the drop counter.
type Result struct {
	Campaigns    []domain.NormalizedCampaign
	SkippedCount int
}

// Normalizer converts raw producer records into the canonical campaign shape.
type Normalizer struct {
	logger *slog.Logger
}

// New builds a normalizer; the logger may be nil.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Apply normalizes every record. A record whose title is empty after cleaning
// is dropped and counted; this is the only unconditional drop in the
// pipeline. Unparsable cashback keeps the record, flagged for review.
func (n *Normalizer) Apply(records []domain.RawCampaignRecord) Result {
	result := Result{Campaigns: make([]domain.NormalizedCampaign, 0, len(records))}

	for _, rec := range records {
		title := CleanTitle(rec.RawTitle)
		if title == "" {
			result.SkippedCount++
			n.debug("record dropped: empty title", "site", rec.SiteID, "url", rec.URL)
			continue
		}

		cashback := ParseCashback(rec.RawCashback)
		device, dual := ClassifyDevice(rec.RawDevice)

		result.Campaigns = append(result.Campaigns, domain.NormalizedCampaign{
			SiteID:          rec.SiteID,
			NativeID:        rec.NativeID,
			Title:           title,
			CashbackValue:   cashback.Value,
			CashbackUnit:    cashback.Unit,
			CashbackDisplay: cashback.Display,
			Device:          device,
			DualPlatform:    dual,
			NeedsReview:     cashback.NeedsReview,
			URL:             rec.URL,
			Category:        rec.Category,
			ScrapedAt:       rec.ScrapedAt,
			SourceRun:       rec.SourceRun,
		})
	}

	return result
}

func (n *Normalizer) debug(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
