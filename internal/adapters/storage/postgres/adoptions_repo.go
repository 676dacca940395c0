package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"noahs-ark/internal/domain/adoptions"
	"noahs-ark/internal/platform/apperr"
)

type AdoptionRequestsRepo struct {
	db *sql.DB
}

func NewAdoptionRequestsRepo(db *sql.DB) *AdoptionRequestsRepo {
	return &AdoptionRequestsRepo{db: db}
}

const adoptionColumns = `
	id, user_id, animal_id, answer_1, answer_2, answer_3,
	valid_id_ref, selfie_with_id_ref, status, rejection_reason,
	created_at, updated_at`

func (r *AdoptionRequestsRepo) Create(ctx context.Context, req adoptions.Request) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO adoption_requests (`+adoptionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		req.ID,
		req.UserID,
		req.AnimalID,
		req.Answers[0],
		req.Answers[1],
		req.Answers[2],
		req.ValidIDRef,
		req.SelfieWithIDRef,
		string(req.Status),
		toNullString(req.RejectionReason),
		req.CreatedAt,
		req.UpdatedAt,
	)
	return err
}

// Update sólo toca el estado: el resto de la solicitud es inmutable.
func (r *AdoptionRequestsRepo) Update(ctx context.Context, req adoptions.Request) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE adoption_requests
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`,
		req.ID,
		string(req.Status),
		toNullString(req.RejectionReason),
		req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AdoptionRequestsRepo) GetByID(ctx context.Context, id string) (adoptions.Request, error) {
	return r.get(ctx, id, "")
}

func (r *AdoptionRequestsRepo) GetForUpdate(ctx context.Context, id string) (adoptions.Request, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *AdoptionRequestsRepo) get(ctx context.Context, id, lock string) (adoptions.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Request{}, apperr.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoption_requests WHERE id = $1`+lock, id)
	req, err := scanAdoptionRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return adoptions.Request{}, apperr.ErrNotFound
	}
	return req, err
}

func (r *AdoptionRequestsRepo) List(ctx context.Context, filter adoptions.ListFilter) ([]adoptions.Request, error) {
	q := `SELECT ` + adoptionColumns + ` FROM adoption_requests WHERE 1=1`
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

	out := make([]adoptions.Request, 0)
	for rows.Next() {
		req, err := scanAdoptionRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanAdoptionRequest(s rowScanner) (adoptions.Request, error) {
	var (
		req    adoptions.Request
		status string
		reason sql.NullString
	)
	if err := s.Scan(
		&req.ID,
		&req.UserID,
		&req.AnimalID,
		&req.Answers[0],
		&req.Answers[1],
		&req.Answers[2],
		&req.ValidIDRef,
		&req.SelfieWithIDRef,
		&status,
		&reason,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return adoptions.Request{}, err
	}
	req.Status = adoptions.Status(status)
	req.RejectionReason = fromNullString(reason)
	return req, nil
}
