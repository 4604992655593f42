package domain

// CampaignChange pairs the baseline and current view of an updated campaign
// together with the human-readable list of fields that differ.
type CampaignChange struct {
	Before        IdentifiedCampaign
	After         IdentifiedCampaign
	ChangedFields []string
}

// DeltaReport classifies every identity key across two snapshots.
type DeltaReport struct {
	New            []IdentifiedCampaign
	Updated        []CampaignChange
	Deleted        []IdentifiedCampaign
	UnchangedCount int
}

// Total is the size of the identity-key union the report partitions.
func (r DeltaReport) Total() int {
	return len(r.New) + len(r.Updated) + len(r.Deleted) + r.UnchangedCount
}

// RecoveryRate reports the share of surviving campaigns that did not change,
// i.e. how much of the previous snapshot could be reused as-is.
func (r DeltaReport) RecoveryRate() float64 {
	survivors := len(r.New) + len(r.Updated) + r.UnchangedCount
	if survivors == 0 {
		return 100
	}
	return float64(r.UnchangedCount) / float64(survivors) * 100
}
