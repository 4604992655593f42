package aggregate

import (
	"sort"

	"CampaignIndexer/internal/domain"
)

type mergeKey struct {
	identity string
	device   domain.Device
}

// Union merges identified campaigns from any number of producer outputs into
// one deduplicated collection. The merge key is (identityKey, device): the
// same identity seen as iOS and as Android stays two records, because the
// sites run parallel per-platform offers under one title. Within a key the
// newest scrapedAt wins; on equal timestamps a reviewed record never
// displaces a clean one, and otherwise the record appearing later in input
// order wins. The result is sorted, so repeating the union over the same
// inputs yields an identical collection.
func Union(inputs ...[]domain.IdentifiedCampaign) []domain.IdentifiedCampaign {
	merged := make(map[mergeKey]domain.IdentifiedCampaign)

	for _, input := range inputs {
		for _, c := range input {
			key := mergeKey{identity: c.IdentityKey, device: c.Device}
			existing, ok := merged[key]
			if !ok || supersedes(c, existing) {
				merged[key] = c
			}
		}
	}

	result := make([]domain.IdentifiedCampaign, 0, len(merged))
	for _, c := range merged {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].IdentityKey != result[j].IdentityKey {
			return result[i].IdentityKey < result[j].IdentityKey
		}
		return result[i].Device < result[j].Device
	})
	return result
}

func supersedes(incoming, existing domain.IdentifiedCampaign) bool {
	if incoming.ScrapedAt.After(existing.ScrapedAt) {
		return true
	}
	if incoming.ScrapedAt.Before(existing.ScrapedAt) {
		return false
	}
	if incoming.NeedsReview != existing.NeedsReview {
		return existing.NeedsReview
	}
	return true
}
