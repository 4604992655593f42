package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CampaignIndexer/internal/domain"
)

// Synonym priority lists per concept. Producers disagree on field names; the
// first present, non-empty key wins.
var (
	titleKeys     = []string{"title", "rawTitle", "name"}
	cashbackKeys  = []string{"cashback", "rawCashback", "points", "pt", "cashback_rate", "percentText"}
	deviceKeys    = []string{"device", "rawDevice", "os", "osType", "environment"}
	urlKeys       = []string{"url", "campaignUrl", "campaign_url"}
	nativeIDKeys  = []string{"nativeId", "id", "external_id", "campaign_id"}
	categoryKeys  = []string{"category", "category_type"}
	scrapedAtKeys = []string{"scrapedAt", "timestamp", "scraped_at"}
	siteKeys      = []string{"siteId", "site", "site_id"}
)

// Defaults fill record fields the document does not carry itself.
type Defaults struct {
	Site      string
	SourceRun string
	ScrapedAt time.Time
}

// Document is one fully-mapped producer output.
type Document struct {
	Site    string
	Records []domain.RawCampaignRecord
}

// ParseDocument maps a loosely-typed producer JSON document onto canonical
// raw records. The campaign array may live under "campaigns" or
// "app_campaigns", or the document may be a bare array. Invalid JSON or a
// campaigns value that is not an array is a hard failure for this one
// document; per-record gaps are not.
func ParseDocument(data []byte, defaults Defaults) (Document, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return Document{}, fmt.Errorf("parse producer document: %w", err)
	}

	site := defaults.Site
	var entries []any

	switch v := root.(type) {
	case []any:
		entries = v
	case map[string]any:
		if s := firstString(v, siteKeys); s != "" {
			site = s
		}
		raw, ok := lookupAny(v, "campaigns", "app_campaigns")
		if !ok {
			return Document{}, fmt.Errorf("producer document has no campaigns array")
		}
		entries, ok = raw.([]any)
		if !ok {
			return Document{}, fmt.Errorf("campaigns field is not an array")
		}
	default:
		return Document{}, fmt.Errorf("producer document is neither object nor array")
	}

	doc := Document{Site: site, Records: make([]domain.RawCampaignRecord, 0, len(entries))}
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		doc.Records = append(doc.Records, mapRecord(obj, site, defaults))
	}
	return doc, nil
}

func mapRecord(obj map[string]any, site string, defaults Defaults) domain.RawCampaignRecord {
	rec := domain.RawCampaignRecord{
		SiteID:      firstString(obj, siteKeys),
		NativeID:    firstString(obj, nativeIDKeys),
		RawTitle:    firstString(obj, titleKeys),
		RawCashback: firstString(obj, cashbackKeys),
		RawDevice:   firstString(obj, deviceKeys),
		URL:         firstString(obj, urlKeys),
		Category:    firstString(obj, categoryKeys),
		ScrapedAt:   defaults.ScrapedAt,
		SourceRun:   defaults.SourceRun,
	}

	if rec.SiteID == "" {
		rec.SiteID = site
	}
	if ts := firstString(obj, scrapedAtKeys); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.ScrapedAt = parsed
		}
	}
	return rec
}

// firstString walks the synonym list and stringifies the first usable value;
// producers emit numeric IDs as JSON numbers, so those are accepted too.
func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func lookupAny(obj map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			return value, true
		}
	}
	return nil, false
}
