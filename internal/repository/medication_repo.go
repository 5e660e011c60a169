package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type MedicationRepo struct {
	pool *pgxpool.Pool
}

func NewMedicationRepo(pool *pgxpool.Pool) *MedicationRepo {
	return &MedicationRepo{pool: pool}
}

const medicationColumns = `id, user_id, name, dosage, frequency, times, notes, is_active, created_at, updated_at`

func (r *MedicationRepo) Create(ctx context.Context, m *models.Medication) error {
	m.ID = uuid.New()
	query := `INSERT INTO medications (id, user_id, name, dosage, frequency, times, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, m.Schedule.Frequency, m.Schedule.Times, m.Notes,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MedicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Medication, error) {
	m := &models.Medication{}
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Schedule.Frequency, &m.Schedule.Times,
		&m.Notes, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MedicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*models.Medication
	for rows.Next() {
		m := &models.Medication{}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Schedule.Frequency, &m.Schedule.Times,
			&m.Notes, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, nil
}

func (r *MedicationRepo) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications
		WHERE user_id = $1 AND is_active = TRUE ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*models.Medication
	for rows.Next() {
		m := &models.Medication{}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Schedule.Frequency, &m.Schedule.Times,
			&m.Notes, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, nil
}

// ListActiveScheduledAt returns active medications (with their owner) that
// have a dose scheduled at the given "HH:MM" local time. Used by the
// reminder scheduler.
func (r *MedicationRepo) ListActiveScheduledAt(ctx context.Context, hhmm string) ([]*models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications
		WHERE is_active = TRUE AND $1 = ANY(times)`

	rows, err := r.pool.Query(ctx, query, hhmm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*models.Medication
	for rows.Next() {
		m := &models.Medication{}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Schedule.Frequency, &m.Schedule.Times,
			&m.Notes, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, nil
}

func (r *MedicationRepo) Update(ctx context.Context, m *models.Medication) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE medications SET name = $1, dosage = $2, frequency = $3, times = $4,
		 notes = $5, is_active = $6, updated_at = NOW() WHERE id = $7`,
		m.Name, m.Dosage, m.Schedule.Frequency, m.Schedule.Times, m.Notes, m.IsActive, m.ID,
	)
	return err
}

func (r *MedicationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM medications WHERE id = $1", id)
	return err
}
