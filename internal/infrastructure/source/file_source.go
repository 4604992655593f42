package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"CampaignIndexer/internal/ingest"
	"CampaignIndexer/internal/ports"
)

// FileSource reads producer documents dropped into a directory. Each scraper
// run writes one JSON file; the filename's leading token names the site
// (e.g. chobirich_ios_app_campaigns.json).
type FileSource struct {
	dir     string
	pattern string
	logger  *slog.Logger
}

var _ ports.ProducerSource = (*FileSource)(nil)

// NewFileSource wires the drop directory and glob pattern.
func NewFileSource(dir, pattern string, logger *slog.Logger) *FileSource {
	if pattern == "" {
		pattern = "*.json"
	}
	return &FileSource{dir: dir, pattern: pattern, logger: logger}
}

// Load parses every matching document. A document that fails to parse is
// skipped and logged; the rest of the run proceeds, so one broken producer
// output never poisons the others.
func (s *FileSource) Load(ctx context.Context) ([]ingest.Document, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	docs := make([]ingest.Document, 0, len(matches))
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.warn("producer file unreadable", "path", path, "error", err)
			continue
		}

		name := filepath.Base(path)
		doc, err := ingest.ParseDocument(data, ingest.Defaults{
			Site:      siteFromFilename(name),
			SourceRun: strings.TrimSuffix(name, filepath.Ext(name)),
			ScrapedAt: fileModTime(path),
		})
		if err != nil {
			s.warn("producer document skipped", "path", path, "error", err)
			continue
		}

		s.debug("producer document loaded", "path", path, "records", len(doc.Records))
		docs = append(docs, doc)
	}

	return docs, nil
}

func siteFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if i := strings.IndexByte(base, '_'); i > 0 {
		return base[:i]
	}
	return base
}

func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now().UTC()
	}
	return info.ModTime().UTC()
}

func (s *FileSource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *FileSource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
