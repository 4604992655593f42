package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/normalize"
)

// Campaign is the artifact record consumed by the search front end. The
// field names are a compatibility surface and must stay stable.
type Campaign struct {
	ID             string  `json:"id"`
	SiteName       string  `json:"siteName"`
	Cashback       string  `json:"cashback"`
	CashbackYen    string  `json:"cashbackYen"`
	Device         string  `json:"device"`
	URL            string  `json:"url"`
	CampaignURL    string  `json:"campaignUrl"`
	LastUpdated    string  `json:"lastUpdated"`
	Description    string  `json:"description"`
	DisplayName    string  `json:"displayName"`
	Category       string  `json:"category"`
	SearchKeywords string  `json:"searchKeywords"`
	SearchWeight   float64 `json:"searchWeight"`
	NeedsReview    bool    `json:"needsReview,omitempty"`
}

// Keyword is one entry of the popular-keyword ranking.
type Keyword struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Metadata carries the collection-level counters an operator needs to judge
// data quality without reading logs.
type Metadata struct {
	TotalCampaigns   int            `json:"totalCampaigns"`
	LastUpdated      string         `json:"lastUpdated"`
	Categories       map[string]int `json:"categories"`
	Devices          map[string]int `json:"devices"`
	Sites            map[string]int `json:"sites"`
	PopularKeywords  []Keyword      `json:"popularKeywords"`
	SkippedCount     int            `json:"skippedCount"`
	NeedsReviewCount int            `json:"needsReviewCount"`
}

// SearchIndex is the complete final artifact; it fully replaces any previous
// one.
type SearchIndex struct {
	Campaigns []Campaign `json:"campaigns"`
	Metadata  Metadata   `json:"metadata"`
}

// RunStats carries pipeline counters into the metadata block.
type RunStats struct {
	SkippedCount int
}

var (
	bracketExpr = regexp.MustCompile(`[\[\]【】（）()]`)
	digitsExpr  = regexp.MustCompile(`^\d+$`)
)

// Builder derives search fields and aggregate metadata. Site display names
// and point-to-yen rates come from per-site configuration; rates differ per
// site and are never a universal constant.
type Builder struct {
	siteNames  map[string]string
	pointRates map[string]float64
}

// NewBuilder wires per-site display names and yen-per-point rates.
func NewBuilder(siteNames map[string]string, pointRates map[string]float64) *Builder {
	return &Builder{siteNames: siteNames, pointRates: pointRates}
}

// Build emits the final artifact from an aggregated collection.
func (b *Builder) Build(campaigns []domain.IdentifiedCampaign, stats RunStats, now time.Time) SearchIndex {
	idx := SearchIndex{
		Campaigns: make([]Campaign, 0, len(campaigns)),
		Metadata: Metadata{
			TotalCampaigns: len(campaigns),
			LastUpdated:    now.UTC().Format(time.RFC3339),
			Categories:     map[string]int{},
			Devices:        map[string]int{},
			Sites:          map[string]int{},
			SkippedCount:   stats.SkippedCount,
		},
	}

	for _, c := range campaigns {
		siteName := b.siteName(c.SiteID)
		idx.Campaigns = append(idx.Campaigns, Campaign{
			ID:             c.IdentityKey,
			SiteName:       siteName,
			Cashback:       c.CashbackDisplay,
			CashbackYen:    b.cashbackYen(c),
			Device:         string(c.Device),
			URL:            c.URL,
			CampaignURL:    c.URL,
			LastUpdated:    c.ScrapedAt.UTC().Format(time.RFC3339),
			Description:    c.Title,
			DisplayName:    c.Title,
			Category:       category(c),
			SearchKeywords: SearchKeywords(c.Title),
			SearchWeight:   SearchWeight(c.CashbackValue, c.CashbackUnit),
			NeedsReview:    c.NeedsReview,
		})

		idx.Metadata.Categories[category(c)]++
		idx.Metadata.Devices[string(c.Device)]++
		idx.Metadata.Sites[siteName]++
		if c.NeedsReview {
			idx.Metadata.NeedsReviewCount++
		}
	}

	idx.Metadata.PopularKeywords = popularKeywords(campaigns, 20)
	return idx
}

// Lightweight strips the index down to the fields the client-side search
// actually loads up front.
func (idx SearchIndex) Lightweight() SearchIndex {
	light := SearchIndex{
		Campaigns: make([]Campaign, 0, len(idx.Campaigns)),
		Metadata: Metadata{
			TotalCampaigns: idx.Metadata.TotalCampaigns,
			LastUpdated:    idx.Metadata.LastUpdated,
		},
	}
	for _, c := range idx.Campaigns {
		desc := c.Description
		if len([]rune(desc)) > 100 {
			desc = string([]rune(desc)[:100])
		}
		light.Campaigns = append(light.Campaigns, Campaign{
			ID:             c.ID,
			SiteName:       c.SiteName,
			Cashback:       c.Cashback,
			Device:         c.Device,
			Description:    desc,
			SearchKeywords: c.SearchKeywords,
			Category:       c.Category,
		})
	}
	return light
}

// SearchKeywords lowercases the title and flattens bracket characters so the
// front end can do plain substring matching.
func SearchKeywords(title string) string {
	text := bracketExpr.ReplaceAllString(strings.ToLower(title), " ")
	return strings.Join(strings.Fields(text), " ")
}

// SearchWeight ranks campaigns for search ordering. Absolute amounts (points
// and yen) tier by magnitude; percent offers get a flat boost since they are
// typically the higher-value kind.
func SearchWeight(value float64, unit domain.CashbackUnit) float64 {
	if unit == domain.UnitPercent {
		return 3
	}

	weight := 1.0
	switch {
	case value >= 1000:
		weight += 3
	case value >= 500:
		weight += 2
	case value >= 100:
		weight += 1
	}
	return weight
}

func (b *Builder) siteName(siteID string) string {
	if name, ok := b.siteNames[siteID]; ok {
		return name
	}
	return siteID
}

// cashbackYen renders a yen-comparable display when the per-site rate is
// known; percent and yen expressions pass through unchanged.
func (b *Builder) cashbackYen(c domain.IdentifiedCampaign) string {
	if c.NeedsReview || c.CashbackUnit != domain.UnitPoint {
		return c.CashbackDisplay
	}
	rate, ok := b.pointRates[c.SiteID]
	if !ok {
		rate = 1
	}
	yen := int64(math.Floor(c.CashbackValue * rate))
	return normalize.GroupDigits(yen) + "円"
}

func category(c domain.IdentifiedCampaign) string {
	if c.Category != "" {
		return c.Category
	}
	return "other"
}

// popularKeywords tokenizes all titles and ranks tokens by frequency; ties
// prefer the shorter keyword, then lexicographic order for determinism.
func popularKeywords(campaigns []domain.IdentifiedCampaign, limit int) []Keyword {
	counts := map[string]int{}
	for _, c := range campaigns {
		words := strings.Fields(bracketExpr.ReplaceAllString(c.Title, " "))
		if len(words) > 5 {
			words = words[:5]
		}
		for _, word := range words {
			token := strings.ToLower(word)
			if len([]rune(token)) < 2 || digitsExpr.MatchString(token) {
				continue
			}
			counts[token]++
		}
	}

	ranked := make([]Keyword, 0, len(counts))
	for token, count := range counts {
		ranked = append(ranked, Keyword{Keyword: token, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		li, lj := len([]rune(ranked[i].Keyword)), len([]rune(ranked[j].Keyword))
		if li != lj {
			return li < lj
		}
		return ranked[i].Keyword < ranked[j].Keyword
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
