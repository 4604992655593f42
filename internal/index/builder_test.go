package index

import (
	"testing"
	"time"

	"CampaignIndexer/internal/domain"
)

func testBuilder() *Builder {
	return NewBuilder(
		map[string]string{"chobirich": "ちょびリッチ", "pointincome": "ポイントインカム"},
		map[string]float64{"chobirich": 0.5, "pointincome": 0.1},
	)
}

func identified(site, key, title string, value float64, unit domain.CashbackUnit, display string, device domain.Device) domain.IdentifiedCampaign {
	return domain.IdentifiedCampaign{
		NormalizedCampaign: domain.NormalizedCampaign{
			SiteID:          site,
			Title:           title,
			CashbackValue:   value,
			CashbackUnit:    unit,
			CashbackDisplay: display,
			Device:          device,
			ScrapedAt:       time.Date(2025, time.August, 30, 9, 0, 0, 0, time.UTC),
		},
		IdentityKey: key,
	}
}

func TestBuildEnrichesCampaigns(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 31, 6, 0, 0, 0, time.UTC)
	idx := testBuilder().Build([]domain.IdentifiedCampaign{
		identified("chobirich", "chobirich:1", "【期間限定】楽天市場", 1200, domain.UnitPoint, "1,200pt", domain.DeviceIOS),
	}, RunStats{SkippedCount: 3}, now)

	if len(idx.Campaigns) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(idx.Campaigns))
	}

	c := idx.Campaigns[0]
	if c.ID != "chobirich:1" {
		t.Fatalf("id = %q", c.ID)
	}
	if c.SiteName != "ちょびリッチ" {
		t.Fatalf("siteName = %q", c.SiteName)
	}
	if c.SearchKeywords != "期間限定 楽天市場" {
		t.Fatalf("searchKeywords = %q", c.SearchKeywords)
	}
	// 1200pt at 0.5 yen per point.
	if c.CashbackYen != "600円" {
		t.Fatalf("cashbackYen = %q", c.CashbackYen)
	}
	if idx.Metadata.SkippedCount != 3 {
		t.Fatalf("skipped = %d", idx.Metadata.SkippedCount)
	}
	if idx.Metadata.Sites["ちょびリッチ"] != 1 || idx.Metadata.Devices["iOS"] != 1 {
		t.Fatalf("metadata counts = %+v", idx.Metadata)
	}
}

func TestSearchWeight(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value float64
		unit  domain.CashbackUnit
		want  float64
	}{
		{value: 50, unit: domain.UnitPoint, want: 1},
		{value: 100, unit: domain.UnitPoint, want: 2},
		{value: 500, unit: domain.UnitPoint, want: 3},
		{value: 1000, unit: domain.UnitPoint, want: 4},
		{value: 2500, unit: domain.UnitYen, want: 4},
		{value: 3.5, unit: domain.UnitPercent, want: 3},
		{value: 90, unit: domain.UnitPercent, want: 3},
	}

	for _, tc := range cases {
		if got := SearchWeight(tc.value, tc.unit); got != tc.want {
			t.Fatalf("SearchWeight(%v, %s) = %v, want %v", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestCashbackYenUsesPerSiteRates(t *testing.T) {
	t.Parallel()

	b := testBuilder()
	idx := b.Build([]domain.IdentifiedCampaign{
		identified("pointincome", "pointincome:1", "案件A", 1000, domain.UnitPoint, "1,000pt", domain.DeviceAll),
		identified("chobirich", "chobirich:2", "案件B", 1000, domain.UnitPoint, "1,000pt", domain.DeviceAll),
		identified("chobirich", "chobirich:3", "案件C", 5, domain.UnitPercent, "5%", domain.DeviceAll),
	}, RunStats{}, time.Now())

	byID := map[string]Campaign{}
	for _, c := range idx.Campaigns {
		byID[c.ID] = c
	}

	if byID["pointincome:1"].CashbackYen != "100円" {
		t.Fatalf("pointincome yen = %q", byID["pointincome:1"].CashbackYen)
	}
	if byID["chobirich:2"].CashbackYen != "500円" {
		t.Fatalf("chobirich yen = %q", byID["chobirich:2"].CashbackYen)
	}
	// Percent offers pass through unconverted.
	if byID["chobirich:3"].CashbackYen != "5%" {
		t.Fatalf("percent yen = %q", byID["chobirich:3"].CashbackYen)
	}
}

func TestPopularKeywords(t *testing.T) {
	t.Parallel()

	campaigns := []domain.IdentifiedCampaign{
		identified("chobirich", "c:1", "楽天市場 ポイントアップ", 0, domain.UnitPoint, "", domain.DeviceAll),
		identified("chobirich", "c:2", "楽天市場 セール", 0, domain.UnitPoint, "", domain.DeviceAll),
		identified("chobirich", "c:3", "Amazon セール", 0, domain.UnitPoint, "", domain.DeviceAll),
		identified("chobirich", "c:4", "12345 999", 0, domain.UnitPoint, "", domain.DeviceAll),
	}

	idx := testBuilder().Build(campaigns, RunStats{}, time.Now())
	keywords := idx.Metadata.PopularKeywords
	if len(keywords) == 0 {
		t.Fatal("no keywords extracted")
	}

	// 楽天市場 and セール both appear twice; the shorter keyword ranks first.
	if keywords[0].Keyword != "セール" || keywords[0].Count != 2 {
		t.Fatalf("top keyword = %+v", keywords[0])
	}
	if keywords[1].Keyword != "楽天市場" || keywords[1].Count != 2 {
		t.Fatalf("second keyword = %+v", keywords[1])
	}

	for _, kw := range keywords {
		if kw.Keyword == "12345" || kw.Keyword == "999" {
			t.Fatalf("numeric token leaked into keywords: %+v", kw)
		}
	}
}

func TestLightweightTruncatesDescriptions(t *testing.T) {
	t.Parallel()

	long := make([]rune, 0, 150)
	for i := 0; i < 150; i++ {
		long = append(long, 'あ')
	}

	idx := testBuilder().Build([]domain.IdentifiedCampaign{
		identified("chobirich", "c:1", string(long), 0, domain.UnitPoint, "", domain.DeviceAll),
	}, RunStats{}, time.Now())

	light := idx.Lightweight()
	if got := len([]rune(light.Campaigns[0].Description)); got != 100 {
		t.Fatalf("description length = %d, want 100", got)
	}
	if light.Campaigns[0].URL != "" {
		t.Fatal("lightweight variant should drop the URL")
	}
}
