package repository

import (
	"context"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (r *Repository) GetAbsencesBetween(from, to time.Time) ([]*domain.Absence, error) {
	query := `
		SELECT id, employee_id, date
		FROM absences
		WHERE date BETWEEN $1 AND $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	absences := make([]*domain.Absence, 0)
	for rows.Next() {
		absence := &domain.Absence{}
		if err := rows.Scan(&absence.ID, &absence.EmployeeID, &absence.Date); err != nil {
			return nil, err
		}
		absences = append(absences, absence)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return absences, nil
}

func (r *Repository) CreateAbsence(absence *domain.Absence) error {
	query := `
		INSERT INTO absences (employee_id, date)
		VALUES ($1, $2)
		ON CONFLICT (employee_id, date) DO NOTHING
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, absence.EmployeeID, absence.Date).Scan(&absence.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAbsence(id int64) error {
	query := `
		DELETE FROM absences WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
