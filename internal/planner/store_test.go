package planner

import (
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

// fakeStore is an in-memory Store for planner tests.
type fakeStore struct {
	employees   []*domain.Employee
	capacities  []*domain.EmployeeCapacity
	instances   []*domain.ShiftInstance
	assignments []*domain.Assignment
	absences    []*domain.Absence
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fakeStore) addEmployee(given, family, function string, area domain.Area, quotas map[domain.CapacityType]int) *domain.Employee {
	emp := &domain.Employee{
		ID:         f.id(),
		GivenName:  given,
		FamilyName: family,
		Function:   function,
		Area:       area,
	}
	f.employees = append(f.employees, emp)
	for ct, n := range quotas {
		f.capacities = append(f.capacities, &domain.EmployeeCapacity{
			ID:         f.id(),
			EmployeeID: emp.ID,
			Type:       ct,
			MaxCount:   n,
		})
	}
	return emp
}

func (f *fakeStore) addInstance(def *domain.ShiftDefinition, day time.Time) *domain.ShiftInstance {
	inst := &domain.ShiftInstance{
		ID:           f.id(),
		DefinitionID: def.ID,
		Definition:   def,
		Date:         day,
		CalendarWeek: domain.ISOWeek(day),
		Month:        domain.MonthTag(day),
	}
	f.instances = append(f.instances, inst)
	return inst
}

func (f *fakeStore) addAssignment(emp *domain.Employee, inst *domain.ShiftInstance, src domain.AssignmentSource) *domain.Assignment {
	a := &domain.Assignment{
		ID:              f.id(),
		EmployeeID:      emp.ID,
		ShiftInstanceID: inst.ID,
		Source:          src,
	}
	f.assignments = append(f.assignments, a)
	return a
}

func (f *fakeStore) addAbsence(emp *domain.Employee, day time.Time) {
	f.absences = append(f.absences, &domain.Absence{ID: f.id(), EmployeeID: emp.ID, Date: day})
}

func (f *fakeStore) instanceByID(id int64) *domain.ShiftInstance {
	for _, inst := range f.instances {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

func (f *fakeStore) hasAssignment(empID, instID int64) bool {
	for _, a := range f.assignments {
		if a.EmployeeID == empID && a.ShiftInstanceID == instID {
			return true
		}
	}
	return false
}

func inRange(day, from, to time.Time) bool {
	return !day.Before(from) && !day.After(to)
}

func (f *fakeStore) GetAllEmployees() ([]*domain.Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) GetAllCapacities() ([]*domain.EmployeeCapacity, error) {
	return f.capacities, nil
}

func (f *fakeStore) GetShiftInstancesBetween(from, to time.Time) ([]*domain.ShiftInstance, error) {
	var out []*domain.ShiftInstance
	for _, inst := range f.instances {
		if inRange(inst.Date, from, to) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAssignmentsBetween(from, to time.Time) ([]*domain.Assignment, error) {
	var out []*domain.Assignment
	for _, a := range f.assignments {
		if inst := f.instanceByID(a.ShiftInstanceID); inst != nil && inRange(inst.Date, from, to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) GetAbsencesBetween(from, to time.Time) ([]*domain.Absence, error) {
	var out []*domain.Absence
	for _, ab := range f.absences {
		if inRange(ab.Date, from, to) {
			out = append(out, ab)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertMissingAssignments(pairs []domain.AssignmentPair) (int, error) {
	created := 0
	for _, p := range pairs {
		if f.hasAssignment(p.EmployeeID, p.ShiftInstanceID) {
			continue
		}
		f.assignments = append(f.assignments, &domain.Assignment{
			ID:              f.id(),
			EmployeeID:      p.EmployeeID,
			ShiftInstanceID: p.ShiftInstanceID,
			Source:          domain.SourceSolver,
		})
		created++
	}
	return created, nil
}

func (f *fakeStore) ReplaceSolverAssignments(from, to time.Time, pairs []domain.AssignmentPair) (int, error) {
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		inst := f.instanceByID(a.ShiftInstanceID)
		if a.Source == domain.SourceSolver && inst != nil && inRange(inst.Date, from, to) {
			continue
		}
		kept = append(kept, a)
	}
	f.assignments = kept
	return f.InsertMissingAssignments(pairs)
}
