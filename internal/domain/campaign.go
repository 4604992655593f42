package domain

import "time"

// Device is the closed platform enumeration campaigns are restricted to.
type Device string

const (
	DeviceIOS     Device = "iOS"
	DeviceAndroid Device = "Android"
	DevicePC      Device = "PC"
	DeviceAll     Device = "All"
)

// CashbackUnit tags how a reward value is denominated.
type CashbackUnit string

const (
	UnitPoint   CashbackUnit = "point"
	UnitYen     CashbackUnit = "yen"
	UnitPercent CashbackUnit = "percent"
)

// RawCampaignRecord is a producer record after field-synonym mapping but
// before any normalization. Producers are untrusted; every field may be noisy.
type RawCampaignRecord struct {
	SiteID      string
	NativeID    string
	RawTitle    string
	RawCashback string
	RawDevice   string
	URL         string
	Category    string
	ScrapedAt   time.Time
	SourceRun   string
}

// NormalizedCampaign carries the cleaned, schema-consistent view of a record.
type NormalizedCampaign struct {
	SiteID          string
	NativeID        string
	Title           string
	CashbackValue   float64
	CashbackUnit    CashbackUnit
	CashbackDisplay string
	Device          Device
	DualPlatform    bool
	NeedsReview     bool
	URL             string
	Category        string
	ScrapedAt       time.Time
	SourceRun       string
}

// IdentifiedCampaign adds the stable identity key and the change-detection
// fingerprint on top of the normalized fields.
type IdentifiedCampaign struct {
	NormalizedCampaign
	IdentityKey        string
	ContentFingerprint string
}

// Snapshot is a persisted per-site campaign collection, used as the diff
// baseline. Replaced wholesale on every successful run.
type Snapshot struct {
	Site      string
	Created   time.Time
	Campaigns []IdentifiedCampaign
}

// ByIdentityKey indexes the snapshot's campaigns.
func (s Snapshot) ByIdentityKey() map[string]IdentifiedCampaign {
	index := make(map[string]IdentifiedCampaign, len(s.Campaigns))
	for _, c := range s.Campaigns {
		index[c.IdentityKey] = c
	}
	return index
}
