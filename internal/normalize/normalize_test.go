package normalize

import (
	"testing"
	"time"

	"CampaignIndexer/internal/domain"
)

func TestApplyDropsEmptyTitles(t *testing.T) {
	t.Parallel()

	n := New(nil)
	records := []domain.RawCampaignRecord{
		{SiteID: "chobirich", RawTitle: "楽天市場", RawCashback: "1,200pt", RawDevice: "ios"},
		{SiteID: "chobirich", RawTitle: "", RawCashback: "100pt"},
		{SiteID: "chobirich", RawTitle: "   ", RawCashback: "200pt"},
	}

	result := n.Apply(records)
	if len(result.Campaigns) != 1 {
		t.Fatalf("expected 1 surviving campaign, got %d", len(result.Campaigns))
	}
	if result.SkippedCount != 2 {
		t.Fatalf("skipped = %d, want 2", result.SkippedCount)
	}

	got := result.Campaigns[0]
	if got.Title != "楽天市場" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.CashbackValue != 1200 || got.CashbackUnit != domain.UnitPoint {
		t.Fatalf("cashback = %v %s", got.CashbackValue, got.CashbackUnit)
	}
	if got.Device != domain.DeviceIOS {
		t.Fatalf("device = %s", got.Device)
	}
}

func TestApplyKeepsUnparsableCashback(t *testing.T) {
	t.Parallel()

	n := New(nil)
	scraped := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	result := n.Apply([]domain.RawCampaignRecord{
		{SiteID: "moppy", RawTitle: "謎の案件", RawCashback: "要確認", ScrapedAt: scraped},
	})

	if result.SkippedCount != 0 {
		t.Fatalf("skipped = %d, want 0", result.SkippedCount)
	}
	if len(result.Campaigns) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(result.Campaigns))
	}

	got := result.Campaigns[0]
	if !got.NeedsReview {
		t.Fatal("expected needsReview flag")
	}
	if got.CashbackValue != 0 {
		t.Fatalf("value = %v, want 0", got.CashbackValue)
	}
	if !got.ScrapedAt.Equal(scraped) {
		t.Fatalf("scrapedAt = %v", got.ScrapedAt)
	}
}
