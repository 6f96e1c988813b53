package repository

import (
	"context"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (r *Repository) GetAssignmentsBetween(from, to time.Time) ([]*domain.Assignment, error) {
	query := `
		SELECT a.id, a.employee_id, a.shift_instance_id, a.source, a.created_at
		FROM assignments a
		JOIN shift_instances i ON i.id = a.shift_instance_id
		WHERE i.date BETWEEN $1 AND $2
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make([]*domain.Assignment, 0)
	for rows.Next() {
		assignment := &domain.Assignment{}
		dst := []any{&assignment.ID, &assignment.EmployeeID, &assignment.ShiftInstanceID, &assignment.Source, &assignment.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return assignments, nil
}

// InsertMissingAssignments writes solver rows and silently skips pairs that
// already exist. Returns the number of rows actually created.
func (r *Repository) InsertMissingAssignments(pairs []domain.AssignmentPair) (int, error) {
	query := `
		INSERT INTO assignments (employee_id, shift_instance_id, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, shift_instance_id) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	created := 0
	for _, pair := range pairs {
		res, err := tx.ExecContext(ctx, query, pair.EmployeeID, pair.ShiftInstanceID, domain.SourceSolver)
		if err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		created += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return created, nil
}

// ReplaceSolverAssignments clears the solver rows of the date range and writes
// the new solution in one transaction. Manual rows are not touched.
func (r *Repository) ReplaceSolverAssignments(from, to time.Time, pairs []domain.AssignmentPair) (int, error) {
	deleteQuery := `
		DELETE FROM assignments a
		USING shift_instances i
		WHERE i.id = a.shift_instance_id
		  AND a.source = $1
		  AND i.date BETWEEN $2 AND $3
	`
	insertQuery := `
		INSERT INTO assignments (employee_id, shift_instance_id, source)
		VALUES ($1, $2, $3)
		ON CONFLICT (employee_id, shift_instance_id) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteQuery, domain.SourceSolver, from, to); err != nil {
		return 0, err
	}

	created := 0
	for _, pair := range pairs {
		res, err := tx.ExecContext(ctx, insertQuery, pair.EmployeeID, pair.ShiftInstanceID, domain.SourceSolver)
		if err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		created += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return created, nil
}

func (r *Repository) CreateAssignment(assignment *domain.Assignment) error {
	query := `
		INSERT INTO assignments (employee_id, shift_instance_id, source)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{assignment.EmployeeID, assignment.ShiftInstanceID, assignment.Source}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAssignment(id int64) error {
	query := `
		DELETE FROM assignments WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterForMonth(month string) ([]*domain.RosterEntry, error) {
	query := `
		SELECT
			i.date,
			d.category,
			d.role,
			d.area,
			d.time_of_day,
			e.id,
			e.given_name,
			e.family_name,
			a.source
		FROM assignments a
		JOIN shift_instances i ON i.id = a.shift_instance_id
		JOIN shift_definitions d ON d.id = i.shift_definition_id
		JOIN employees e ON e.id = a.employee_id
		WHERE i.month = $1
		ORDER BY i.date, d.category, d.area, d.time_of_day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.RosterEntry, 0)
	for rows.Next() {
		entry := &domain.RosterEntry{}
		dst := []any{&entry.Date, &entry.Category, &entry.Role, &entry.Area, &entry.TimeOfDay, &entry.EmployeeID, &entry.GivenName, &entry.FamilyName, &entry.Source}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
