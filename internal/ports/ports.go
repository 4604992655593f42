package ports

import (
	"context"
	"time"

	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/index"
	"CampaignIndexer/internal/ingest"
)

// ProducerSource delivers the raw documents dropped by the scraper runs.
type ProducerSource interface {
	Load(ctx context.Context) ([]ingest.Document, error)
}

// BaselineStore persists per-site snapshots between runs. A missing baseline
// is a normal first-run state and must come back as an empty snapshot, not
// an error.
type BaselineStore interface {
	Load(ctx context.Context, site string) (domain.Snapshot, error)
	Save(ctx context.Context, snapshot domain.Snapshot) error
}

// ArtifactWriter emits the operator-facing outputs of a run.
type ArtifactWriter interface {
	WriteIndex(ctx context.Context, idx index.SearchIndex) error
	WriteDelta(ctx context.Context, site string, report domain.DeltaReport, at time.Time) error
}

// CampaignRepository mirrors the finalized collection into a database for
// downstream tooling.
type CampaignRepository interface {
	ReplaceSite(ctx context.Context, site string, campaigns []domain.IdentifiedCampaign) error
}

// Notifier pushes run summaries to an operator channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
