package diff

import (
	"testing"
	"time"

	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/identity"
)

func campaign(key, title, cashback string, device domain.Device) domain.IdentifiedCampaign {
	c := domain.IdentifiedCampaign{
		NormalizedCampaign: domain.NormalizedCampaign{
			SiteID:          "chobirich",
			Title:           title,
			CashbackDisplay: cashback,
			Device:          device,
			ScrapedAt:       time.Date(2025, time.August, 30, 0, 0, 0, 0, time.UTC),
		},
		IdentityKey: key,
	}
	c.ContentFingerprint = identity.Fingerprint(c.NormalizedCampaign)
	return c
}

func TestCompareFirstRunIsAllNew(t *testing.T) {
	t.Parallel()

	current := domain.Snapshot{Site: "chobirich", Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,200pt", domain.DeviceIOS),
	}}

	report := Compare(domain.Snapshot{}, current)
	if len(report.New) != 1 || report.New[0].IdentityKey != "chobirich:123" {
		t.Fatalf("new = %+v", report.New)
	}
	if len(report.Deleted) != 0 || len(report.Updated) != 0 || report.UnchangedCount != 0 {
		t.Fatalf("unexpected classifications: %+v", report)
	}
}

func TestCompareIdenticalRunIsUnchanged(t *testing.T) {
	t.Parallel()

	snap := domain.Snapshot{Site: "chobirich", Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,200pt", domain.DeviceIOS),
	}}

	report := Compare(snap, snap)
	if report.UnchangedCount != 1 {
		t.Fatalf("unchanged = %d, want 1", report.UnchangedCount)
	}
	if len(report.New) != 0 || len(report.Updated) != 0 || len(report.Deleted) != 0 {
		t.Fatalf("unexpected classifications: %+v", report)
	}
}

func TestCompareDetectsCashbackUpdate(t *testing.T) {
	t.Parallel()

	baseline := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,200pt", domain.DeviceIOS),
	}}
	current := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,500pt", domain.DeviceIOS),
	}}

	report := Compare(baseline, current)
	if len(report.Updated) != 1 {
		t.Fatalf("updated = %d, want 1", len(report.Updated))
	}

	change := report.Updated[0]
	if len(change.ChangedFields) != 1 || change.ChangedFields[0] != "cashbackDisplay" {
		t.Fatalf("changedFields = %v", change.ChangedFields)
	}
	if change.Before.CashbackDisplay != "1,200pt" || change.After.CashbackDisplay != "1,500pt" {
		t.Fatalf("before/after = %q/%q", change.Before.CashbackDisplay, change.After.CashbackDisplay)
	}
}

func TestCompareDetectsDeletion(t *testing.T) {
	t.Parallel()

	baseline := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,200pt", domain.DeviceIOS),
		campaign("chobirich:456", "Yahoo!ショッピング", "500pt", domain.DeviceAll),
	}}
	current := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:123", "楽天市場", "1,200pt", domain.DeviceIOS),
	}}

	report := Compare(baseline, current)
	if len(report.Deleted) != 1 || report.Deleted[0].IdentityKey != "chobirich:456" {
		t.Fatalf("deleted = %+v", report.Deleted)
	}
	if report.UnchangedCount != 1 {
		t.Fatalf("unchanged = %d", report.UnchangedCount)
	}
}

// The classified sets partition the identity-key union of both snapshots.
func TestComparePartitionInvariant(t *testing.T) {
	t.Parallel()

	baseline := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:1", "A", "100pt", domain.DeviceAll),
		campaign("chobirich:2", "B", "200pt", domain.DeviceAll),
		campaign("chobirich:3", "C", "300pt", domain.DeviceAll),
	}}
	current := domain.Snapshot{Campaigns: []domain.IdentifiedCampaign{
		campaign("chobirich:2", "B", "250pt", domain.DeviceAll),
		campaign("chobirich:3", "C", "300pt", domain.DeviceAll),
		campaign("chobirich:4", "D", "400pt", domain.DeviceAll),
	}}

	report := Compare(baseline, current)

	union := map[string]struct{}{}
	for _, c := range baseline.Campaigns {
		union[c.IdentityKey] = struct{}{}
	}
	for _, c := range current.Campaigns {
		union[c.IdentityKey] = struct{}{}
	}

	if report.Total() != len(union) {
		t.Fatalf("partition broken: total %d, union %d", report.Total(), len(union))
	}

	seen := map[string]int{}
	for _, c := range report.New {
		seen[c.IdentityKey]++
	}
	for _, c := range report.Updated {
		seen[c.After.IdentityKey]++
	}
	for _, c := range report.Deleted {
		seen[c.IdentityKey]++
	}
	for key, count := range seen {
		if count > 1 {
			t.Fatalf("key %s classified %d times", key, count)
		}
	}
}

func TestRecoveryRate(t *testing.T) {
	t.Parallel()

	report := domain.DeltaReport{UnchangedCount: 3}
	report.New = append(report.New, domain.IdentifiedCampaign{IdentityKey: "a"})
	if got := report.RecoveryRate(); got != 75 {
		t.Fatalf("recovery rate = %v, want 75", got)
	}

	empty := domain.DeltaReport{}
	if got := empty.RecoveryRate(); got != 100 {
		t.Fatalf("empty recovery rate = %v, want 100", got)
	}
}
