package repository

import (
	"context"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (r *Repository) GetAllShiftDefinitions() ([]*domain.ShiftDefinition, error) {
	query := `
		SELECT id, category, role, area, time_of_day, is_weekday, is_weekend
		FROM shift_definitions
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	definitions := make([]*domain.ShiftDefinition, 0)
	for rows.Next() {
		definition := &domain.ShiftDefinition{}
		dst := []any{&definition.ID, &definition.Category, &definition.Role, &definition.Area, &definition.TimeOfDay, &definition.IsWeekday, &definition.IsWeekend}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return definitions, nil
}

func (r *Repository) CreateShiftDefinition(definition *domain.ShiftDefinition) error {
	query := `
		INSERT INTO shift_definitions (category, role, area, time_of_day, is_weekday, is_weekend)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{definition.Category, definition.Role, definition.Area, definition.TimeOfDay, definition.IsWeekday, definition.IsWeekend}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&definition.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftInstancesBetween(from, to time.Time) ([]*domain.ShiftInstance, error) {
	query := `
		SELECT
			i.id,
			i.shift_definition_id,
			i.date,
			i.calendar_week,
			i.month,
			d.category,
			d.role,
			d.area,
			d.time_of_day,
			d.is_weekday,
			d.is_weekend
		FROM shift_instances i
		JOIN shift_definitions d ON d.id = i.shift_definition_id
		WHERE i.date BETWEEN $1 AND $2
		ORDER BY i.date, d.category, d.area, d.time_of_day
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]*domain.ShiftInstance, 0)
	for rows.Next() {
		instance := &domain.ShiftInstance{Definition: &domain.ShiftDefinition{}}
		dst := []any{
			&instance.ID,
			&instance.DefinitionID,
			&instance.Date,
			&instance.CalendarWeek,
			&instance.Month,
			&instance.Definition.Category,
			&instance.Definition.Role,
			&instance.Definition.Area,
			&instance.Definition.TimeOfDay,
			&instance.Definition.IsWeekday,
			&instance.Definition.IsWeekend,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		instance.Definition.ID = instance.DefinitionID
		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return instances, nil
}

// InsertShiftInstances inserts generated instances; dates a definition already
// has an instance for are left untouched. Returns the number of new rows.
func (r *Repository) InsertShiftInstances(instances []*domain.ShiftInstance) (int, error) {
	query := `
		INSERT INTO shift_instances (shift_definition_id, date, calendar_week, month)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shift_definition_id, date) DO NOTHING
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	created := 0
	for _, instance := range instances {
		res, err := tx.ExecContext(ctx, query, instance.DefinitionID, instance.Date, instance.CalendarWeek, instance.Month)
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
