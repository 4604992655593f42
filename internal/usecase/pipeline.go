package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"CampaignIndexer/internal/aggregate"
	"CampaignIndexer/internal/diff"
	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/identity"
	"CampaignIndexer/internal/index"
	"CampaignIndexer/internal/normalize"
	"CampaignIndexer/internal/ports"
)

// PipelineDeps wires all driven adapters into the reconciliation pipeline.
type PipelineDeps struct {
	Source     ports.ProducerSource
	Baselines  ports.BaselineStore
	Artifacts  ports.ArtifactWriter
	Repository ports.CampaignRepository
	Notifier   ports.Notifier
	Normalizer *normalize.Normalizer
	Resolver   *identity.Resolver
	Builder    *index.Builder
	Logger     *slog.Logger
}

// Pipeline implements the full reconciliation workflow: ingest, normalize,
// resolve identities, diff per site, aggregate across sources, and emit the
// search index.
type Pipeline struct {
	source     ports.ProducerSource
	baselines  ports.BaselineStore
	artifacts  ports.ArtifactWriter
	repository ports.CampaignRepository
	notifier   ports.Notifier
	normalizer *normalize.Normalizer
	resolver   *identity.Resolver
	builder    *index.Builder
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		source:     deps.Source,
		baselines:  deps.Baselines,
		artifacts:  deps.Artifacts,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		normalizer: deps.Normalizer,
		resolver:   deps.Resolver,
		builder:    deps.Builder,
		logger:     deps.Logger,
	}
}

// AttachRepository plugs in the optional database mirror after construction;
// it must be called before Run.
func (p *Pipeline) AttachRepository(repo ports.CampaignRepository) {
	p.repository = repo
}

// Run executes one full reconciliation pass. Per-record problems surface as
// counters on the output; only collaborator failures abort the run.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.source == nil {
		return nil
	}

	docs, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load producer documents: %w", err)
	}
	p.debug("producer documents loaded", "count", len(docs))

	var (
		skipped int
		inputs  [][]domain.IdentifiedCampaign
		bySite  = map[string][]domain.IdentifiedCampaign{}
	)
	for _, doc := range docs {
		result := p.normalizer.Apply(doc.Records)
		skipped += result.SkippedCount

		identified := p.resolver.Resolve(result.Campaigns)
		inputs = append(inputs, identified)
		for _, c := range identified {
			bySite[c.SiteID] = append(bySite[c.SiteID], c)
		}
	}

	reports, err := p.reconcileSites(ctx, bySite, now)
	if err != nil {
		return err
	}

	union := aggregate.Union(inputs...)
	idx := p.builder.Build(union, index.RunStats{SkippedCount: skipped}, now)

	if p.artifacts != nil {
		if err := p.artifacts.WriteIndex(ctx, idx); err != nil {
			return fmt.Errorf("write search index: %w", err)
		}
	}
	p.debug("search index built",
		"campaigns", idx.Metadata.TotalCampaigns,
		"skipped", idx.Metadata.SkippedCount,
		"needs_review", idx.Metadata.NeedsReviewCount)

	if p.notifier == nil || len(reports) == 0 {
		return nil
	}
	if err := p.notifier.PublishSummary(ctx, buildSummary(reports)); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	return nil
}

type siteReport struct {
	site   string
	report domain.DeltaReport
}

// reconcileSites diffs each site's current records against its baseline, then
// replaces the baseline wholesale. The per-site snapshot is itself a
// deduplicated union so duplicate producer runs cannot inflate it.
func (p *Pipeline) reconcileSites(ctx context.Context, bySite map[string][]domain.IdentifiedCampaign, now time.Time) ([]siteReport, error) {
	sites := make([]string, 0, len(bySite))
	for site := range bySite {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	reports := make([]siteReport, 0, len(sites))
	for _, site := range sites {
		current := domain.Snapshot{
			Site:      site,
			Created:   now,
			Campaigns: aggregate.Union(bySite[site]),
		}

		var baseline domain.Snapshot
		if p.baselines != nil {
			loaded, err := p.baselines.Load(ctx, site)
			if err != nil {
				return nil, fmt.Errorf("load baseline for %s: %w", site, err)
			}
			baseline = loaded
		}

		report := diff.Compare(baseline, current)
		p.debug("site reconciled", "site", site,
			"new", len(report.New), "updated", len(report.Updated),
			"deleted", len(report.Deleted), "unchanged", report.UnchangedCount)

		if p.artifacts != nil {
			if err := p.artifacts.WriteDelta(ctx, site, report, now); err != nil {
				return nil, fmt.Errorf("write delta for %s: %w", site, err)
			}
		}
		if p.baselines != nil {
			if err := p.baselines.Save(ctx, current); err != nil {
				return nil, fmt.Errorf("save baseline for %s: %w", site, err)
			}
		}
		if p.repository != nil {
			if err := p.repository.ReplaceSite(ctx, site, current.Campaigns); err != nil {
				return nil, fmt.Errorf("replace %s campaigns: %w", site, err)
			}
		}

		reports = append(reports, siteReport{site: site, report: report})
	}
	return reports, nil
}

func buildSummary(reports []siteReport) string {
	var summary string
	for _, r := range reports {
		summary += fmt.Sprintf("%s: new %d, updated %d, deleted %d, unchanged %d (recovery %.1f%%)\n",
			r.site,
			len(r.report.New),
			len(r.report.Updated),
			len(r.report.Deleted),
			r.report.UnchangedCount,
			r.report.RecoveryRate())
	}
	return summary
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
