package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/index"
	"CampaignIndexer/internal/ports"
)

// FileStore persists baselines, delta reports, and the search index as JSON
// artifacts. Each artifact is replaced wholesale; index writes go through a
// temp file and rename so readers never observe a torn file.
type FileStore struct {
	baselineDir string
	deltaDir    string
	indexPath   string
	lightPath   string
	logger      *slog.Logger
}

var (
	_ ports.BaselineStore  = (*FileStore)(nil)
	_ ports.ArtifactWriter = (*FileStore)(nil)
)

// NewFileStore wires the artifact locations; lightPath may be empty to skip
// the lightweight index variant.
func NewFileStore(baselineDir, deltaDir, indexPath, lightPath string, logger *slog.Logger) *FileStore {
	return &FileStore{
		baselineDir: baselineDir,
		deltaDir:    deltaDir,
		indexPath:   indexPath,
		lightPath:   lightPath,
		logger:      logger,
	}
}

// Load reads the site's baseline snapshot. A missing or corrupt baseline is
// an expected first-run state: it comes back as an empty snapshot with a nil
// error, logged informationally.
func (s *FileStore) Load(ctx context.Context, site string) (domain.Snapshot, error) {
	data, err := os.ReadFile(s.baselineFile(site))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.info("baseline unreadable, starting from empty", "site", site, "error", err)
		} else {
			s.info("no baseline yet, first run for site", "site", site)
		}
		return domain.Snapshot{Site: site}, nil
	}

	var stored snapshotFile
	if err := json.Unmarshal(data, &stored); err != nil {
		s.info("baseline corrupt, starting from empty", "site", site, "error", err)
		return domain.Snapshot{Site: site}, nil
	}

	return stored.toSnapshot(site), nil
}

// Save replaces the site's baseline snapshot.
func (s *FileStore) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if err := os.MkdirAll(s.baselineDir, 0o755); err != nil {
		return fmt.Errorf("ensure baseline dir: %w", err)
	}

	data, err := json.MarshalIndent(newSnapshotFile(snapshot), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	return writeAtomic(s.baselineFile(snapshot.Site), data)
}

// WriteIndex replaces the search index artifact and its lightweight variant.
func (s *FileStore) WriteIndex(ctx context.Context, idx index.SearchIndex) error {
	if err := os.MkdirAll(filepath.Dir(s.indexPath), 0o755); err != nil {
		return fmt.Errorf("ensure index dir: %w", err)
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := writeAtomic(s.indexPath, data); err != nil {
		return err
	}

	if s.lightPath == "" {
		return nil
	}
	light, err := json.MarshalIndent(idx.Lightweight(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal lightweight index: %w", err)
	}
	return writeAtomic(s.lightPath, light)
}

// WriteDelta emits the operator-facing change report for one site.
func (s *FileStore) WriteDelta(ctx context.Context, site string, report domain.DeltaReport, at time.Time) error {
	if err := os.MkdirAll(s.deltaDir, 0o755); err != nil {
		return fmt.Errorf("ensure delta dir: %w", err)
	}

	data, err := json.MarshalIndent(newDeltaFile(site, report, at), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal delta: %w", err)
	}

	name := fmt.Sprintf("differential_%s_%s.json", site, at.UTC().Format("20060102T150405Z"))
	return writeAtomic(filepath.Join(s.deltaDir, name), data)
}

func (s *FileStore) baselineFile(site string) string {
	return filepath.Join(s.baselineDir, site+"_baseline.json")
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
