package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"glaciercare/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func (r *ReportRepository) Create(ctx context.Context, report models.Report) error {
	const query = `
		INSERT INTO reports (
			id, user_id, filename, media_type, size_bytes, bucket, object_key,
			risk_level, result, expire_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.Filename,
		report.MediaType,
		report.SizeBytes,
		report.Bucket,
		report.ObjectKey,
		report.RiskLevel,
		report.ResultJSON,
		report.ExpireAt,
	)
	return err
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (models.Report, error) {
	const query = `
		SELECT id, user_id, filename, media_type, size_bytes, bucket, object_key,
		       risk_level, result, expire_at, created_at
		FROM reports WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Report{}, ErrReportNotFound
		}
		return models.Report{}, err
	}
	return report, nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Report, error) {
	const query = `
		SELECT id, user_id, filename, media_type, size_bytes, bucket, object_key,
		       risk_level, result, expire_at, created_at
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListExpired returns reports past their retention deadline, oldest first.
func (r *ReportRepository) ListExpired(ctx context.Context, limit int) ([]models.Report, error) {
	const query = `
		SELECT id, user_id, filename, media_type, size_bytes, bucket, object_key,
		       risk_level, result, expire_at, created_at
		FROM reports
		WHERE expire_at IS NOT NULL AND expire_at < NOW()
		ORDER BY expire_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *ReportRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM reports WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanReport(row pgx.Row) (models.Report, error) {
	var report models.Report
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.Filename,
		&report.MediaType,
		&report.SizeBytes,
		&report.Bucket,
		&report.ObjectKey,
		&report.RiskLevel,
		&report.ResultJSON,
		&report.ExpireAt,
		&report.CreatedAt,
	)
	return report, err
}
