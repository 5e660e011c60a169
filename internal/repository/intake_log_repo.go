package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

type IntakeLogRepo struct {
	pool *pgxpool.Pool
}

func NewIntakeLogRepo(pool *pgxpool.Pool) *IntakeLogRepo {
	return &IntakeLogRepo{pool: pool}
}

const intakeLogSelect = `SELECT l.id, l.user_id, l.medication_id, m.name, l.status, l.taken_at, l.created_at
	FROM intake_logs l JOIN medications m ON l.medication_id = m.id`

func (r *IntakeLogRepo) Create(ctx context.Context, entry *models.IntakeLog) error {
	entry.ID = uuid.New()
	query := `INSERT INTO intake_logs (id, user_id, medication_id, status, taken_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.MedicationID, entry.Status, entry.TakenAt,
	).Scan(&entry.CreatedAt)
}

// ListSince returns the user's log entries with taken_at >= since, oldest
// first. Medication names are joined in so callers never need a second
// query per entry.
func (r *IntakeLogRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.IntakeLog, error) {
	query := intakeLogSelect + ` WHERE l.user_id = $1 AND l.taken_at >= $2 ORDER BY l.taken_at ASC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.IntakeLog
	for rows.Next() {
		entry := &models.IntakeLog{}
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.MedicationID, &entry.MedicationName,
			&entry.Status, &entry.TakenAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *IntakeLogRepo) ListByMedication(ctx context.Context, medicationID uuid.UUID, since time.Time) ([]*models.IntakeLog, error) {
	query := intakeLogSelect + ` WHERE l.medication_id = $1 AND l.taken_at >= $2 ORDER BY l.taken_at ASC`

	rows, err := r.pool.Query(ctx, query, medicationID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.IntakeLog
	for rows.Next() {
		entry := &models.IntakeLog{}
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.MedicationID, &entry.MedicationName,
			&entry.Status, &entry.TakenAt, &entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *IntakeLogRepo) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM intake_logs WHERE id = $1 AND user_id = $2", id, userID)
	return err
}
