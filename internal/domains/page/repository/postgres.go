package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pagesmith-backend/internal/domains/page/model"
)

const pageColumns = `
	id, business_id, update_id, generation_batch_id,
	file_path, slug, intent, page_variant, title,
	page_data, size_estimate, COALESCE(dynamic_tags, '{}'), tags_expire_at,
	published, published_at, expired, expired_at,
	created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Upsert relies on the partial unique index
// pages_path_active_idx ON (file_path) WHERE NOT expired. A conflicting row
// of another business is left untouched and reported as model.ErrPathOwned.
func (r *postgresRepository) Upsert(ctx context.Context, p *model.Page) error {
	query := `
		INSERT INTO pages (
			id, business_id, update_id, generation_batch_id,
			file_path, slug, intent, page_variant, title,
			page_data, size_estimate, dynamic_tags, tags_expire_at,
			published, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, FALSE, $14, $14
		)
		ON CONFLICT (file_path) WHERE NOT expired DO UPDATE SET
			update_id           = EXCLUDED.update_id,
			generation_batch_id = EXCLUDED.generation_batch_id,
			slug                = EXCLUDED.slug,
			intent              = EXCLUDED.intent,
			page_variant        = EXCLUDED.page_variant,
			title               = EXCLUDED.title,
			page_data           = EXCLUDED.page_data,
			size_estimate       = EXCLUDED.size_estimate,
			dynamic_tags        = EXCLUDED.dynamic_tags,
			tags_expire_at      = EXCLUDED.tags_expire_at,
			published           = FALSE,
			published_at        = NULL,
			updated_at          = EXCLUDED.updated_at
		WHERE pages.business_id = EXCLUDED.business_id
		RETURNING id, created_at, updated_at
	`

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	// dynamic_tags is NOT NULL and pgx encodes a nil slice as NULL.
	tags := p.DynamicTags
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()

	err := r.pool.QueryRow(ctx, query,
		p.ID,
		p.BusinessID,
		p.UpdateID,
		p.GenerationBatchID,
		p.FilePath,
		p.Slug,
		string(p.Intent),
		p.PageVariant,
		p.Title,
		[]byte(p.PageData),
		p.SizeEstimate,
		tags,
		p.TagsExpireAt,
		now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to upsert page %s: %w", p.FilePath, model.ErrPathOwned)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	p.Published = false
	p.PublishedAt = nil
	return nil
}

func (r *postgresRepository) FindActiveByPath(ctx context.Context, filePath string) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE file_path = $1 AND NOT expired`

	p, err := scanPage(r.pool.QueryRow(ctx, query, filePath))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find page by path: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	p, err := scanPage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) ListUnpublishedIDs(ctx context.Context, sel Selector) ([]uuid.UUID, error) {
	base := `SELECT id FROM pages WHERE NOT published AND NOT expired`

	var (
		query string
		args  []interface{}
	)
	switch {
	case len(sel.IDs) > 0:
		query = base + ` AND id = ANY($1) ORDER BY created_at`
		args = []interface{}{sel.IDs}
	case sel.BatchID != nil:
		query = base + ` AND generation_batch_id = $1 ORDER BY created_at`
		args = []interface{}{*sel.BatchID}
	case sel.All:
		query = base + ` ORDER BY created_at`
	default:
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpublished pages: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan unpublished pages: %w", err)
	}
	return ids, nil
}

func (r *postgresRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) ([]model.Page, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		UPDATE pages
		SET published = TRUE, published_at = $2, updated_at = $2
		WHERE id = ANY($1) AND NOT published AND NOT expired
		RETURNING ` + pageColumns

	rows, err := r.pool.Query(ctx, query, ids, at)
	if err != nil {
		return nil, fmt.Errorf("failed to mark pages published: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan published page: %w", err)
		}
		pages = append(pages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to mark pages published: %w", err)
	}
	return pages, nil
}

func (r *postgresRepository) ListPublished(ctx context.Context) ([]PublishedPath, error) {
	query := `
		SELECT file_path, GREATEST(updated_at, COALESCE(published_at, updated_at)) AS last_modified
		FROM pages
		WHERE published AND NOT expired
		ORDER BY last_modified DESC, file_path
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list published pages: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (PublishedPath, error) {
		var p PublishedPath
		err := row.Scan(&p.FilePath, &p.LastModified)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan published pages: %w", err)
	}
	return out, nil
}

func scanPage(row pgx.Row) (*model.Page, error) {
	var (
		p      model.Page
		intent string
		data   []byte
	)
	err := row.Scan(
		&p.ID, &p.BusinessID, &p.UpdateID, &p.GenerationBatchID,
		&p.FilePath, &p.Slug, &intent, &p.PageVariant, &p.Title,
		&data, &p.SizeEstimate, &p.DynamicTags, &p.TagsExpireAt,
		&p.Published, &p.PublishedAt, &p.Expired, &p.ExpiredAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Intent = model.Intent(intent)
	p.PageData = data
	return &p, nil
}
