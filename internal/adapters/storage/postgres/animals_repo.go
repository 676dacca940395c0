package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"noahs-ark/internal/domain/animals"
	"noahs-ark/internal/platform/apperr"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, name, age, species, breed, birth_date, color, gender, description,
	image_ref, medical_records, is_temporarily_adopted, is_adopted,
	device_id, tracking_ref, created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		a.ID,
		a.Name,
		a.Age,
		a.Species,
		a.Breed,
		toNullTime(a.BirthDate),
		a.Color,
		a.Gender,
		a.Description,
		a.ImageRef,
		a.MedicalRecords,
		a.IsTemporarilyAdopted,
		a.IsAdopted,
		a.DeviceID,
		a.TrackingRef,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE animals
		SET
			name = $2,
			age = $3,
			species = $4,
			breed = $5,
			birth_date = $6,
			color = $7,
			gender = $8,
			description = $9,
			image_ref = $10,
			medical_records = $11,
			is_temporarily_adopted = $12,
			is_adopted = $13,
			device_id = $14,
			tracking_ref = $15,
			updated_at = $16
		WHERE id = $1
	`,
		a.ID,
		a.Name,
		a.Age,
		a.Species,
		a.Breed,
		toNullTime(a.BirthDate),
		a.Color,
		a.Gender,
		a.Description,
		a.ImageRef,
		a.MedicalRecords,
		a.IsTemporarilyAdopted,
		a.IsAdopted,
		a.DeviceID,
		a.TrackingRef,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rowsAffected(res) == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	return r.get(ctx, id, "")
}

func (r *AnimalsRepo) GetForUpdate(ctx context.Context, id string) (animals.Animal, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *AnimalsRepo) get(ctx context.Context, id, lock string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, apperr.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`+lock, id)
	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, apperr.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) List(ctx context.Context, filter animals.ListFilter) ([]animals.Animal, error) {
	q := `SELECT ` + animalColumns + ` FROM animals WHERE 1=1`
	args := []any{}
	if filter.AvailableOnly {
		q += ` AND NOT is_adopted AND NOT is_temporarily_adopted`
	}
	if s := strings.TrimSpace(filter.Query); s != "" {
		args = append(args, "%"+s+"%")
		q += ` AND (name ILIKE $1 OR breed ILIKE $1)`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnimal(s rowScanner) (animals.Animal, error) {
	var (
		a  animals.Animal
		bd sql.NullTime
	)
	if err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Age,
		&a.Species,
		&a.Breed,
		&bd,
		&a.Color,
		&a.Gender,
		&a.Description,
		&a.ImageRef,
		&a.MedicalRecords,
		&a.IsTemporarilyAdopted,
		&a.IsAdopted,
		&a.DeviceID,
		&a.TrackingRef,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}
	// birth_date es DATE; pgx lo mapea a medianoche UTC
	a.BirthDate = fromNullTime(bd)
	return a, nil
}
