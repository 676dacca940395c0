package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"noahs-ark/internal/domain/users"
	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

const userColumns = `
	id, name, last_name, email, role,
	address, phone_number, age, gender, civil_status, profile_photo_ref,
	last_activity_at, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		u.ID,
		u.Name,
		u.LastName,
		u.Email,
		string(u.Role),
		u.Address,
		u.PhoneNumber,
		toNullInt(u.Age),
		string(u.Gender),
		u.CivilStatus,
		u.ProfilePhotoRef,
		toNullTime(u.LastActivityAt),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE users
		SET
			name = $2,
			last_name = $3,
			email = $4,
			role = $5,
			address = $6,
			phone_number = $7,
			age = $8,
			gender = $9,
			civil_status = $10,
			profile_photo_ref = $11,
			updated_at = $12
		WHERE id = $1
	`,
		u.ID,
		u.Name,
		u.LastName,
		u.Email,
		string(u.Role),
		u.Address,
		u.PhoneNumber,
		toNullInt(u.Age),
		string(u.Gender),
		u.CivilStatus,
		u.ProfilePhotoRef,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, apperr.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, apperr.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) TouchActivity(ctx context.Context, id string, at time.Time) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE users SET last_activity_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func scanUser(s rowScanner) (users.User, error) {
	var (
		u      users.User
		role   string
		gender string
		age    sql.NullInt64
		seen   sql.NullTime
	)
	if err := s.Scan(
		&u.ID,
		&u.Name,
		&u.LastName,
		&u.Email,
		&role,
		&u.Address,
		&u.PhoneNumber,
		&age,
		&gender,
		&u.CivilStatus,
		&u.ProfilePhotoRef,
		&seen,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return users.User{}, err
	}
	u.Role = auth.Role(role)
	u.Gender = users.Gender(gender)
	u.Age = fromNullInt(age)
	u.LastActivityAt = fromNullTime(seen)
	return u, nil
}
