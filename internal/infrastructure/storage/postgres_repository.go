package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"CampaignIndexer/internal/domain"
	"CampaignIndexer/internal/ports"
)

// PostgresRepository mirrors the finalized campaign collection into Postgres
// for downstream tooling. Rows for a site are replaced wholesale inside one
// transaction, matching the replace-on-success artifact semantics.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.CampaignRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ReplaceSite swaps the site's campaign rows for the given collection.
func (r *PostgresRepository) ReplaceSite(ctx context.Context, site string, campaigns []domain.IdentifiedCampaign) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := r.builder.
		Delete("campaigns").
		Where(sq.Eq{"site": site}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s rows: %w", site, err)
	}

	if len(campaigns) > 0 {
		insert := r.builder.
			Insert("campaigns").
			Columns("identity_key", "fingerprint", "site", "native_id", "title",
				"cashback", "cashback_value", "cashback_unit", "device",
				"needs_review", "url", "category", "scraped_at")
		for _, c := range campaigns {
			insert = insert.Values(c.IdentityKey, c.ContentFingerprint, c.SiteID,
				c.NativeID, c.Title, c.CashbackDisplay, c.CashbackValue,
				string(c.CashbackUnit), string(c.Device), c.NeedsReview,
				c.URL, c.Category, c.ScrapedAt)
		}

		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s rows: %w", site, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s replace: %w", site, err)
	}
	return nil
}
