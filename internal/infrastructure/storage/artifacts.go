package storage

import (
	"time"

	"CampaignIndexer/internal/domain"
)

// storedCampaign is the on-disk campaign shape shared by baselines and delta
// reports.
type storedCampaign struct {
	ID            string    `json:"id"`
	Hash          string    `json:"hash"`
	Site          string    `json:"site"`
	NativeID      string    `json:"nativeId,omitempty"`
	Title         string    `json:"title"`
	CashbackValue float64   `json:"cashbackValue"`
	CashbackUnit  string    `json:"cashbackUnit"`
	Cashback      string    `json:"cashback"`
	Device        string    `json:"device"`
	DualPlatform  bool      `json:"dualPlatform,omitempty"`
	NeedsReview   bool      `json:"needsReview,omitempty"`
	URL           string    `json:"url"`
	Category      string    `json:"category,omitempty"`
	ScrapedAt     time.Time `json:"scrapedAt"`
	SourceRun     string    `json:"sourceRun,omitempty"`
}

type snapshotFile struct {
	Site      string           `json:"site"`
	Created   time.Time        `json:"created"`
	Campaigns []storedCampaign `json:"campaigns"`
}

type deltaSummary struct {
	Total        int     `json:"total"`
	New          int     `json:"new"`
	Updated      int     `json:"updated"`
	Deleted      int     `json:"deleted"`
	Unchanged    int     `json:"unchanged"`
	RecoveryRate float64 `json:"recoveryRate"`
}

type deltaChange struct {
	Before        storedCampaign `json:"before"`
	After         storedCampaign `json:"after"`
	ChangedFields []string       `json:"changedFields"`
}

type deltaDifferences struct {
	New     []storedCampaign `json:"new"`
	Updated []deltaChange    `json:"updated"`
	Deleted []storedCampaign `json:"deleted"`
}

type deltaFile struct {
	Timestamp   time.Time        `json:"timestamp"`
	Site        string           `json:"site"`
	Summary     deltaSummary     `json:"summary"`
	Differences deltaDifferences `json:"differences"`
}

func newSnapshotFile(snapshot domain.Snapshot) snapshotFile {
	file := snapshotFile{
		Site:      snapshot.Site,
		Created:   snapshot.Created,
		Campaigns: make([]storedCampaign, 0, len(snapshot.Campaigns)),
	}
	for _, c := range snapshot.Campaigns {
		file.Campaigns = append(file.Campaigns, toStored(c))
	}
	return file
}

func (f snapshotFile) toSnapshot(site string) domain.Snapshot {
	snapshot := domain.Snapshot{
		Site:      site,
		Created:   f.Created,
		Campaigns: make([]domain.IdentifiedCampaign, 0, len(f.Campaigns)),
	}
	for _, c := range f.Campaigns {
		snapshot.Campaigns = append(snapshot.Campaigns, fromStored(c))
	}
	return snapshot
}

func newDeltaFile(site string, report domain.DeltaReport, at time.Time) deltaFile {
	file := deltaFile{
		Timestamp: at.UTC(),
		Site:      site,
		Summary: deltaSummary{
			Total:        report.Total(),
			New:          len(report.New),
			Updated:      len(report.Updated),
			Deleted:      len(report.Deleted),
			Unchanged:    report.UnchangedCount,
			RecoveryRate: report.RecoveryRate(),
		},
		Differences: deltaDifferences{
			New:     make([]storedCampaign, 0, len(report.New)),
			Updated: make([]deltaChange, 0, len(report.Updated)),
			Deleted: make([]storedCampaign, 0, len(report.Deleted)),
		},
	}
	for _, c := range report.New {
		file.Differences.New = append(file.Differences.New, toStored(c))
	}
	for _, change := range report.Updated {
		file.Differences.Updated = append(file.Differences.Updated, deltaChange{
			Before:        toStored(change.Before),
			After:         toStored(change.After),
			ChangedFields: change.ChangedFields,
		})
	}
	for _, c := range report.Deleted {
		file.Differences.Deleted = append(file.Differences.Deleted, toStored(c))
	}
	return file
}

func toStored(c domain.IdentifiedCampaign) storedCampaign {
	return storedCampaign{
		ID:            c.IdentityKey,
		Hash:          c.ContentFingerprint,
		Site:          c.SiteID,
		NativeID:      c.NativeID,
		Title:         c.Title,
		CashbackValue: c.CashbackValue,
		CashbackUnit:  string(c.CashbackUnit),
		Cashback:      c.CashbackDisplay,
		Device:        string(c.Device),
		DualPlatform:  c.DualPlatform,
		NeedsReview:   c.NeedsReview,
		URL:           c.URL,
		Category:      c.Category,
		ScrapedAt:     c.ScrapedAt,
		SourceRun:     c.SourceRun,
	}
}

func fromStored(c storedCampaign) domain.IdentifiedCampaign {
	return domain.IdentifiedCampaign{
		NormalizedCampaign: domain.NormalizedCampaign{
			SiteID:          c.Site,
			NativeID:        c.NativeID,
			Title:           c.Title,
			CashbackValue:   c.CashbackValue,
			CashbackUnit:    domain.CashbackUnit(c.CashbackUnit),
			CashbackDisplay: c.Cashback,
			Device:          domain.Device(c.Device),
			DualPlatform:    c.DualPlatform,
			NeedsReview:     c.NeedsReview,
			URL:             c.URL,
			Category:        c.Category,
			ScrapedAt:       c.ScrapedAt,
			SourceRun:       c.SourceRun,
		},
		IdentityKey:        c.ID,
		ContentFingerprint: c.Hash,
	}
}
