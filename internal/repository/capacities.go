package repository

import (
	"context"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (r *Repository) GetAllCapacities() ([]*domain.EmployeeCapacity, error) {
	query := `
		SELECT id, employee_id, capacity_type, max_count
		FROM employee_capacities
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capacities := make([]*domain.EmployeeCapacity, 0)
	for rows.Next() {
		capacity := &domain.EmployeeCapacity{}
		dst := []any{&capacity.ID, &capacity.EmployeeID, &capacity.Type, &capacity.MaxCount}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		capacities = append(capacities, capacity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return capacities, nil
}

func (r *Repository) GetCapacitiesByEmployee(employeeID int64) ([]*domain.EmployeeCapacity, error) {
	query := `
		SELECT id, capacity_type, max_count
		FROM employee_capacities WHERE employee_id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	capacities := make([]*domain.EmployeeCapacity, 0)
	for rows.Next() {
		capacity := &domain.EmployeeCapacity{EmployeeID: employeeID}
		if err := rows.Scan(&capacity.ID, &capacity.Type, &capacity.MaxCount); err != nil {
			return nil, err
		}
		capacities = append(capacities, capacity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return capacities, nil
}

func (r *Repository) UpsertCapacity(capacity *domain.EmployeeCapacity) error {
	query := `
		INSERT INTO employee_capacities (employee_id, capacity_type, max_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, capacity_type) DO UPDATE SET max_count = EXCLUDED.max_count
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{capacity.EmployeeID, capacity.Type, capacity.MaxCount}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&capacity.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteCapacity(id int64) error {
	query := `
		DELETE FROM employee_capacities WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
