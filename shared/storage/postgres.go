package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"content-pipeline/internal/models"
	"content-pipeline/shared/config"
)

// PostgresStore is the durable RecordStore. Job rows are flat; artifact rows
// keep slides, copy variants and image URLs in a metadata jsonb blob, since
// the store only ever needs whole-record reads and writes.
type PostgresStore struct {
	db *sql.DB
}

// artifactMeta is the jsonb payload of one artifact row.
type artifactMeta struct {
	Slides       []models.Slide                          `json:"slides,omitempty"`
	Quote        string                                  `json:"quote,omitempty"`
	Attribution  string                                  `json:"attribution,omitempty"`
	Hook         string                                  `json:"hook,omitempty"`
	ImageURL     string                                  `json:"image_url,omitempty"`
	CopyVariants map[models.Platform]*models.CopyVariant `json:"copy_variants,omitempty"`
}

func NewPostgresStore(ctx context.Context, cfg *config.StorageConfig) (*PostgresStore, error) {
	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("postgres URL is required (set POSTGRES_URL or storage.postgres_url)")
	}

	db, err := sql.Open("pgx", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) SaveJob(ctx context.Context, job *models.JobRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_jobs (id, project_id, status, total_items, completed_items, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			total_items = EXCLUDED.total_items,
			completed_items = EXCLUDED.completed_items,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at`,
		job.ID, job.ProjectID, job.Status, job.TotalItems, job.CompletedItems,
		job.Error, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *models.JobRecord) error {
	job.UpdatedAt = time.Now()
	return s.SaveJob(ctx, job)
}

func (s *PostgresStore) SaveArtifact(ctx context.Context, artifact *models.ContentArtifact) error {
	meta, err := json.Marshal(artifactMeta{
		Slides:       artifact.Slides,
		Quote:        artifact.Quote,
		Attribution:  artifact.Attribution,
		Hook:         artifact.Hook,
		ImageURL:     artifact.ImageURL,
		CopyVariants: artifact.CopyVariants,
	})
	if err != nil {
		return fmt.Errorf("failed to encode artifact metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO content_artifacts (id, project_id, content_type, title, status, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at`,
		artifact.ID, artifact.ProjectID, artifact.Type, artifact.Title,
		artifact.Status, meta, artifact.CreatedAt, artifact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", artifact.ID, err)
	}
	return nil
}

func (s *PostgresStore) UpdateArtifact(ctx context.Context, artifact *models.ContentArtifact) error {
	artifact.UpdatedAt = time.Now()
	return s.SaveArtifact(ctx, artifact)
}

func (s *PostgresStore) GetArtifactsByProject(ctx context.Context, projectID string) ([]*models.ContentArtifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, content_type, title, status, metadata, created_at, updated_at
		FROM content_artifacts
		WHERE project_id = $1
		ORDER BY created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []*models.ContentArtifact
	for rows.Next() {
		var (
			a       models.ContentArtifact
			rawMeta []byte
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Type, &a.Title, &a.Status, &rawMeta, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}

		var meta artifactMeta
		if err := json.Unmarshal(rawMeta, &meta); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for artifact %s: %w", a.ID, err)
		}
		a.Slides = meta.Slides
		a.Quote = meta.Quote
		a.Attribution = meta.Attribution
		a.Hook = meta.Hook
		a.ImageURL = meta.ImageURL
		a.CopyVariants = meta.CopyVariants

		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SweepStaleGenerating(ctx context.Context, threshold time.Duration) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE content_artifacts
		SET status = $1, updated_at = now()
		WHERE status = $2 AND updated_at < now() - make_interval(secs => $3)`,
		models.StatusDraft, models.StatusGenerating, threshold.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale artifacts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
