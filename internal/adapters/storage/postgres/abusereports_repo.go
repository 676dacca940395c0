package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"noahs-ark/internal/domain/abusereports"
	"noahs-ark/internal/platform/apperr"
)

type AbuseReportsRepo struct {
	db *sql.DB
}

func NewAbuseReportsRepo(db *sql.DB) *AbuseReportsRepo {
	return &AbuseReportsRepo{db: db}
}

const abuseReportColumns = `
	id, user_id, description, photo_refs, video_refs, status, rejection_reason, created_at, updated_at`

func (r *AbuseReportsRepo) Create(ctx context.Context, rep abusereports.Report) error {
	photos, videos, err := marshalRefs(rep)
	if err != nil {
		return err
	}
	_, err = conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO abuse_reports (`+abuseReportColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rep.ID,
		rep.UserID,
		rep.Description,
		photos,
		videos,
		string(rep.Status),
		toNullString(rep.RejectionReason),
		rep.CreatedAt,
		rep.UpdatedAt,
	)
	return err
}

func (r *AbuseReportsRepo) Update(ctx context.Context, rep abusereports.Report) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE abuse_reports
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`,
		rep.ID,
		string(rep.Status),
		toNullString(rep.RejectionReason),
		rep.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AbuseReportsRepo) GetByID(ctx context.Context, id string) (abusereports.Report, error) {
	return r.get(ctx, id, "")
}

func (r *AbuseReportsRepo) GetForUpdate(ctx context.Context, id string) (abusereports.Report, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *AbuseReportsRepo) get(ctx context.Context, id, lock string) (abusereports.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return abusereports.Report{}, apperr.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+abuseReportColumns+` FROM abuse_reports WHERE id = $1`+lock, id)
	rep, err := scanAbuseReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return abusereports.Report{}, apperr.ErrNotFound
	}
	return rep, err
}

func (r *AbuseReportsRepo) List(ctx context.Context, filter abusereports.ListFilter) ([]abusereports.Report, error) {
	q := `SELECT ` + abuseReportColumns + ` FROM abuse_reports WHERE 1=1`
	args := []any{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		q += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]abusereports.Report, 0)
	for rows.Next() {
		rep, err := scanAbuseReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// photo_refs / video_refs son JSONB (arreglo de strings).
func marshalRefs(rep abusereports.Report) ([]byte, []byte, error) {
	photos, err := json.Marshal(nonNil(rep.PhotoRefs))
	if err != nil {
		return nil, nil, err
	}
	videos, err := json.Marshal(nonNil(rep.VideoRefs))
	if err != nil {
		return nil, nil, err
	}
	return photos, videos, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanAbuseReport(s rowScanner) (abusereports.Report, error) {
	var (
		rep            abusereports.Report
		photos, videos []byte
		status         string
		reason         sql.NullString
	)
	if err := s.Scan(
		&rep.ID,
		&rep.UserID,
		&rep.Description,
		&photos,
		&videos,
		&status,
		&reason,
		&rep.CreatedAt,
		&rep.UpdatedAt,
	); err != nil {
		return abusereports.Report{}, err
	}
	if err := json.Unmarshal(photos, &rep.PhotoRefs); err != nil {
		return abusereports.Report{}, fmt.Errorf("decode photo_refs: %w", err)
	}
	if err := json.Unmarshal(videos, &rep.VideoRefs); err != nil {
		return abusereports.Report{}, fmt.Errorf("decode video_refs: %w", err)
	}
	rep.PhotoRefs = nonNil(rep.PhotoRefs)
	rep.VideoRefs = nonNil(rep.VideoRefs)
	rep.Status = abusereports.Status(status)
	rep.RejectionReason = fromNullString(reason)
	return rep, nil
}
