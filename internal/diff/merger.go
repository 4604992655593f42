package diff

import (
	"sort"

	"CampaignIndexer/internal/domain"
)

// Compare classifies every identity key across the baseline and current
// snapshots. It is a pure function of the two inputs: an absent baseline is
// simply an empty snapshot, so a first run reports everything as new.
// The classified sets partition the identity-key union; no key appears in
// more than one of new/updated/deleted.
func Compare(baseline, current domain.Snapshot) domain.DeltaReport {
	previous := baseline.ByIdentityKey()

	var report domain.DeltaReport
	seen := make(map[string]struct{}, len(current.Campaigns))

	for _, c := range current.Campaigns {
		if _, dup := seen[c.IdentityKey]; dup {
			continue
		}
		seen[c.IdentityKey] = struct{}{}

		before, existed := previous[c.IdentityKey]
		switch {
		case !existed:
			report.New = append(report.New, c)
		case before.ContentFingerprint == c.ContentFingerprint:
			report.UnchangedCount++
		default:
			report.Updated = append(report.Updated, domain.CampaignChange{
				Before:        before,
				After:         c,
				ChangedFields: changedFields(before, c),
			})
		}
	}

	for _, c := range baseline.Campaigns {
		if _, still := seen[c.IdentityKey]; !still {
			report.Deleted = append(report.Deleted, c)
			seen[c.IdentityKey] = struct{}{}
		}
	}

	sortReport(&report)
	return report
}

// changedFields lists which watched fields differ, for human-readable change
// reports. The fingerprint, not this list, decides whether a change exists.
func changedFields(before, after domain.IdentifiedCampaign) []string {
	var fields []string
	if before.Title != after.Title {
		fields = append(fields, "title")
	}
	if before.CashbackDisplay != after.CashbackDisplay {
		fields = append(fields, "cashbackDisplay")
	}
	if before.Device != after.Device {
		fields = append(fields, "device")
	}
	return fields
}

func sortReport(report *domain.DeltaReport) {
	sort.Slice(report.New, func(i, j int) bool {
		return report.New[i].IdentityKey < report.New[j].IdentityKey
	})
	sort.Slice(report.Updated, func(i, j int) bool {
		return report.Updated[i].After.IdentityKey < report.Updated[j].After.IdentityKey
	})
	sort.Slice(report.Deleted, func(i, j int) bool {
		return report.Deleted[i].IdentityKey < report.Deleted[j].IdentityKey
	})
}
