package planner

import (
	"fmt"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

type planEmployee struct {
	*domain.Employee
	role domain.PlanableRole
}

// planningContext is the self-contained snapshot the model builder works on.
// Employees and shift instances are index-addressed; the id maps translate
// back to store ids.
type planningContext struct {
	month          string
	monthStart     time.Time
	monthEnd       time.Time
	prevMonthStart time.Time
	// windowEnd is monthEnd, extended by one day when the month ends on a
	// Saturday so the adjacent Sunday participates in weekend coupling.
	windowEnd time.Time

	employees  []*planEmployee
	instances  []*domain.ShiftInstance
	capacities []map[domain.CapacityType]int // by employee index

	fixed    [][2]int // (employee index, instance index), forced to 1
	fixedSet map[[2]int]bool

	absent map[int64]map[string]bool // employee id -> date key

	empIndex  map[int64]int
	instIndex map[int64]int
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (c *planningContext) inPlanningMonth(t time.Time) bool {
	k := dateKey(t)
	return k >= dateKey(c.monthStart) && k <= dateKey(c.monthEnd)
}

func (c *planningContext) isAbsent(employeeID int64, date time.Time) bool {
	return c.absent[employeeID][dateKey(date)]
}

func loadContext(store Store, req *PlanRequest, policy MergePolicy) (*planningContext, error) {
	monthStart := time.Date(req.StartDate.Year(), req.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	if dateKey(req.EndDate) > dateKey(monthEnd) || req.EndDate.Before(monthStart) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideMonth, dateKey(req.EndDate))
	}

	ctx := &planningContext{
		month:          domain.MonthTag(monthStart),
		monthStart:     monthStart,
		monthEnd:       monthEnd,
		prevMonthStart: monthStart.AddDate(0, -1, 0),
		windowEnd:      monthEnd,
		fixedSet:       make(map[[2]int]bool),
		absent:         make(map[int64]map[string]bool),
		empIndex:       make(map[int64]int),
		instIndex:      make(map[int64]int),
	}
	if monthEnd.Weekday() == time.Saturday {
		ctx.windowEnd = monthEnd.AddDate(0, 0, 1)
	}

	capacities, err := store.GetAllCapacities()
	if err != nil {
		return nil, err
	}
	capsByEmployee := make(map[int64]map[domain.CapacityType]int)
	for _, row := range capacities {
		if capsByEmployee[row.EmployeeID] == nil {
			capsByEmployee[row.EmployeeID] = make(map[domain.CapacityType]int)
		}
		capsByEmployee[row.EmployeeID][row.Type] = row.MaxCount
	}

	employees, err := store.GetAllEmployees()
	if err != nil {
		return nil, err
	}
	for _, emp := range employees {
		role := emp.PlanableRole()
		if role == domain.RoleNone {
			continue
		}
		// Full quota map with missing entries defaulted to zero; employees
		// with an all-zero quota are excluded from planning entirely.
		quota := make(map[domain.CapacityType]int, len(domain.AllCapacityTypes))
		total := 0
		for _, ct := range domain.AllCapacityTypes {
			quota[ct] = capsByEmployee[emp.ID][ct]
			total += quota[ct]
		}
		if total == 0 {
			continue
		}
		ctx.empIndex[emp.ID] = len(ctx.employees)
		ctx.employees = append(ctx.employees, &planEmployee{Employee: emp, role: role})
		ctx.capacities = append(ctx.capacities, quota)
	}

	instances, err := store.GetShiftInstancesBetween(ctx.prevMonthStart, ctx.windowEnd)
	if err != nil {
		return nil, err
	}
	for _, inst := range instances {
		if inst.Definition == nil {
			return nil, fmt.Errorf("%w: shift instance %d has no definition", ErrDataConsistency, inst.ID)
		}
		if inst.Month != domain.MonthTag(inst.Date) {
			return nil, fmt.Errorf("%w: shift instance %d tagged %q for date %s", ErrDataConsistency, inst.ID, inst.Month, dateKey(inst.Date))
		}
		if inst.Definition.IsWeekend != domain.IsWeekendDate(inst.Date) {
			return nil, fmt.Errorf("%w: shift instance %d weekend flag disagrees with date %s", ErrDataConsistency, inst.ID, dateKey(inst.Date))
		}
		ctx.instIndex[inst.ID] = len(ctx.instances)
		ctx.instances = append(ctx.instances, inst)
	}

	assignments, err := store.GetAssignmentsBetween(ctx.prevMonthStart, ctx.windowEnd)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		j, ok := ctx.instIndex[a.ShiftInstanceID]
		if !ok {
			return nil, fmt.Errorf("%w: assignment %d references shift instance %d outside the loaded window", ErrDataConsistency, a.ID, a.ShiftInstanceID)
		}
		inst := ctx.instances[j]

		// Context assignments (previous month and the tail Sunday) are always
		// fixed. Planning-month rows are fixed under RESPECT, and manual rows
		// are never rewritten regardless of policy.
		fixed := !ctx.inPlanningMonth(inst.Date) || policy == MergeRespect || a.Source == domain.SourceManual
		if !fixed {
			continue
		}

		e, ok := ctx.empIndex[a.EmployeeID]
		if !ok {
			return nil, fmt.Errorf("%w: assignment %d references employee %d without a planable role", ErrDataConsistency, a.ID, a.EmployeeID)
		}
		key := [2]int{e, j}
		if !ctx.fixedSet[key] {
			ctx.fixedSet[key] = true
			ctx.fixed = append(ctx.fixed, key)
		}
	}

	absences, err := store.GetAbsencesBetween(ctx.prevMonthStart, ctx.windowEnd)
	if err != nil {
		return nil, err
	}
	for _, ab := range append(absences, absencePtrs(req.Absences)...) {
		if ctx.absent[ab.EmployeeID] == nil {
			ctx.absent[ab.EmployeeID] = make(map[string]bool)
		}
		ctx.absent[ab.EmployeeID][dateKey(ab.Date)] = true
	}

	return ctx, nil
}

func absencePtrs(absences []domain.Absence) []*domain.Absence {
	out := make([]*domain.Absence, len(absences))
	for i := range absences {
		out[i] = &absences[i]
	}
	return out
}
