package planner

import (
	"errors"
	"testing"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

// March 2026 is the reference month of most tests: the 2nd is a Monday, the
// weekends fall on the 7th/8th, 14th/15th, 21st/22nd and 28th/29th.

func (f *fakeStore) newDef(cat domain.ShiftCategory, role domain.PlanableRole, area domain.Area, tod domain.TimeOfDay) *domain.ShiftDefinition {
	return &domain.ShiftDefinition{
		ID:        f.id(),
		Category:  cat,
		Role:      role,
		Area:      area,
		TimeOfDay: tod,
		IsWeekday: cat == domain.CategoryRBWeekday,
		IsWeekend: cat != domain.CategoryRBWeekday,
	}
}

// addWeekdayWeek creates Monday through Friday instances of one definition.
func (f *fakeStore) addWeekdayWeek(def *domain.ShiftDefinition, monday time.Time) []*domain.ShiftInstance {
	var out []*domain.ShiftInstance
	for i := 0; i < 5; i++ {
		out = append(out, f.addInstance(def, monday.AddDate(0, 0, i)))
	}
	return out
}

func marchRequest() *PlanRequest {
	return &PlanRequest{
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 31),
	}
}

func mustPlan(t *testing.T, f *fakeStore, req *PlanRequest) *PlanResult {
	t.Helper()
	res, err := New(f).Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	return res
}

func TestPlanFillsAllShiftsWithinQuota(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addWeekdayWeek(def, date(2026, time.March, 2))
	f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 5 {
		t.Errorf("expected 5 assignments, got %d", res.AssignmentsCreated)
	}
	if res.Month != "2026-03" {
		t.Errorf("expected month 2026-03, got %s", res.Month)
	}
	// Five fills minus one same-week repeat penalty.
	if res.ObjectiveValue != -4900 {
		t.Errorf("expected objective -4900, got %d", res.ObjectiveValue)
	}
}

func TestPlanStopsAtQuota(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addWeekdayWeek(def, date(2026, time.March, 2))
	f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 3})

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 3 {
		t.Errorf("expected 3 assignments, got %d", res.AssignmentsCreated)
	}
	if res.ObjectiveValue != -2900 {
		t.Errorf("expected objective -2900, got %d", res.ObjectiveValue)
	}
}

func TestPlanOverplanningCoversEverythingWithOverage(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addWeekdayWeek(def, date(2026, time.March, 2))
	f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 3})

	req := marchRequest()
	req.AllowOverplanning = true
	res := mustPlan(t, f, req)
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 5 {
		t.Errorf("expected 5 assignments, got %d", res.AssignmentsCreated)
	}
	// Five fills, two quota overruns, one same-week repeat.
	if res.ObjectiveValue != -4500 {
		t.Errorf("expected objective -4500, got %d", res.ObjectiveValue)
	}
}

func TestPlanCouplesWeekendPair(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryAW, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	sat := f.addInstance(def, date(2026, time.March, 7))
	sun := f.addInstance(def, date(2026, time.March, 8))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityAWNursing: 2})

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 2 {
		t.Fatalf("expected 2 assignments, got %d", res.AssignmentsCreated)
	}
	if !f.hasAssignment(anna.ID, sat.ID) || !f.hasAssignment(anna.ID, sun.ID) {
		t.Fatal("weekend pair not assigned to the same employee")
	}

	// Drop the Sunday row and re-run under RESPECT: the fixed Saturday forces
	// the same employee back onto Sunday, and only that row is created.
	kept := f.assignments[:0]
	for _, a := range f.assignments {
		if a.ShiftInstanceID != sun.ID {
			kept = append(kept, a)
		}
	}
	f.assignments = kept

	res = mustPlan(t, f, marchRequest())
	if res.AssignmentsCreated != 1 {
		t.Errorf("expected 1 assignment on re-run, got %d", res.AssignmentsCreated)
	}
	if !f.hasAssignment(anna.ID, sun.ID) {
		t.Error("Sunday half of the pair was not restored")
	}
}

func TestPlanHalfAvailableWeekendStaysUnassigned(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryAW, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addInstance(def, date(2026, time.March, 7))
	f.addInstance(def, date(2026, time.March, 8))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityAWNursing: 2})
	f.addAbsence(anna, date(2026, time.March, 8))

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 0 {
		t.Errorf("expected no assignments, got %d", res.AssignmentsCreated)
	}
}

func TestPlanSkipsAbsenceDays(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	insts := f.addWeekdayWeek(def, date(2026, time.March, 2))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})
	f.addAbsence(anna, date(2026, time.March, 4))

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 4 {
		t.Errorf("expected 4 assignments, got %d", res.AssignmentsCreated)
	}
	if f.hasAssignment(anna.ID, insts[2].ID) {
		t.Error("assignment created on an absence day")
	}
}

func TestPlanRequestAbsencesSupplementStoredOnes(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addWeekdayWeek(def, date(2026, time.March, 2))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})

	req := marchRequest()
	req.Absences = []domain.Absence{{EmployeeID: anna.ID, Date: date(2026, time.March, 3)}}
	res := mustPlan(t, f, req)
	if res.AssignmentsCreated != 4 {
		t.Errorf("expected 4 assignments, got %d", res.AssignmentsCreated)
	}
}

func TestPlanManualDoubleBookingIsInfeasible(t *testing.T) {
	f := newFakeStore()
	nord := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	sued := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaSued, domain.TimeNone)
	a := f.addInstance(nord, date(2026, time.March, 2))
	b := f.addInstance(sued, date(2026, time.March, 2))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})
	f.addAssignment(anna, a, domain.SourceManual)
	f.addAssignment(anna, b, domain.SourceManual)
	before := len(f.assignments)

	res := mustPlan(t, f, marchRequest())
	if res.Status != "INFEASIBLE" {
		t.Fatalf("expected INFEASIBLE, got %s", res.Status)
	}
	if res.AssignmentsCreated != 0 {
		t.Errorf("expected nothing written, got %d", res.AssignmentsCreated)
	}
	if len(f.assignments) != before {
		t.Error("store changed despite infeasible model")
	}
}

func TestPlanOverwriteKeepsManualRows(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	mon := f.addInstance(def, date(2026, time.March, 2))
	tue := f.addInstance(def, date(2026, time.March, 3))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})
	bert := f.addEmployee("Bert", "Conrad", "Pflegekraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})
	f.addAssignment(anna, mon, domain.SourceManual)
	f.addAssignment(anna, tue, domain.SourceSolver)

	req := marchRequest()
	req.ExistingAssignments = MergeOverwrite
	res := mustPlan(t, f, req)
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if !f.hasAssignment(anna.ID, mon.ID) {
		t.Error("manual Monday row was removed")
	}
	// Spreading the week avoids the repeat penalty, so Tuesday moves over.
	if !f.hasAssignment(bert.ID, tue.ID) {
		t.Error("Tuesday was not replanned onto the free employee")
	}
	if f.hasAssignment(anna.ID, tue.ID) {
		t.Error("stale solver row survived the overwrite")
	}
	if res.AssignmentsCreated != 1 {
		t.Errorf("expected 1 assignment, got %d", res.AssignmentsCreated)
	}
}

func TestPlanRespectIsIdempotent(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addWeekdayWeek(def, date(2026, time.March, 2))
	f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})

	first := mustPlan(t, f, marchRequest())
	if first.AssignmentsCreated != 5 {
		t.Fatalf("expected 5 assignments on first run, got %d", first.AssignmentsCreated)
	}
	second := mustPlan(t, f, marchRequest())
	if second.AssignmentsCreated != 0 {
		t.Errorf("expected 0 assignments on re-run, got %d", second.AssignmentsCreated)
	}
	if len(f.assignments) != 5 {
		t.Errorf("expected 5 stored rows, got %d", len(f.assignments))
	}
}

func TestPlanTailSundayJoinsCoupling(t *testing.T) {
	// February 2026 ends on a Saturday; the adjacent Sunday (1 March) must be
	// covered by the same employee, but only the February half is written.
	f := newFakeStore()
	def := f.newDef(domain.CategoryAW, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	sat := f.addInstance(def, date(2026, time.February, 28))
	sun := f.addInstance(def, date(2026, time.March, 1))
	anna := f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityAWNursing: 2})

	req := &PlanRequest{
		StartDate: date(2026, time.February, 1),
		EndDate:   date(2026, time.February, 28),
	}
	res := mustPlan(t, f, req)
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 1 {
		t.Errorf("expected 1 assignment, got %d", res.AssignmentsCreated)
	}
	if !f.hasAssignment(anna.ID, sat.ID) {
		t.Error("Saturday shift not assigned")
	}
	if f.hasAssignment(anna.ID, sun.ID) {
		t.Error("tail Sunday must not be written by the February run")
	}
}

func TestPlanIgnoresNonPlanableAndZeroQuotaEmployees(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	f.addInstance(def, date(2026, time.March, 2))
	f.addEmployee("Vera", "Walter", "Verwaltung", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})
	f.addEmployee("Nora", "Quandt", "Pflegefachkraft", domain.AreaNord, nil)

	res := mustPlan(t, f, marchRequest())
	if res.Status != "OPTIMAL" {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.AssignmentsCreated != 0 {
		t.Errorf("expected no assignments, got %d", res.AssignmentsCreated)
	}
}

func TestPlanValidatesRequest(t *testing.T) {
	f := newFakeStore()
	p := New(f)

	_, err := p.Plan(&PlanRequest{EndDate: date(2026, time.March, 31)})
	if !errors.Is(err, ErrMalformedDate) {
		t.Errorf("expected ErrMalformedDate, got %v", err)
	}

	_, err = p.Plan(&PlanRequest{StartDate: date(2026, time.March, 31), EndDate: date(2026, time.March, 1)})
	if !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("expected ErrEndBeforeStart, got %v", err)
	}

	_, err = p.Plan(&PlanRequest{StartDate: date(2026, time.March, 1), EndDate: date(2026, time.April, 2)})
	if !errors.Is(err, ErrOutsideMonth) {
		t.Errorf("expected ErrOutsideMonth, got %v", err)
	}

	_, err = p.Plan(&PlanRequest{
		StartDate:           date(2026, time.March, 1),
		EndDate:             date(2026, time.March, 31),
		ExistingAssignments: "MERGE",
	})
	if !errors.Is(err, ErrUnknownMergePolicy) {
		t.Errorf("expected ErrUnknownMergePolicy, got %v", err)
	}
}

func TestPlanRejectsInconsistentData(t *testing.T) {
	f := newFakeStore()
	def := f.newDef(domain.CategoryRBWeekday, domain.RoleNursing, domain.AreaNord, domain.TimeNone)
	inst := f.addInstance(def, date(2026, time.March, 2))
	inst.Month = "2026-04" // wrong month tag
	f.addEmployee("Anna", "Berger", "Pflegefachkraft", domain.AreaNord,
		map[domain.CapacityType]int{domain.CapacityRBNursingWeekday: 5})

	_, err := New(f).Plan(marchRequest())
	if !errors.Is(err, ErrDataConsistency) {
		t.Errorf("expected ErrDataConsistency, got %v", err)
	}
}

func TestParseMergePolicy(t *testing.T) {
	cases := []struct {
		in      string
		want    MergePolicy
		wantErr bool
	}{
		{"", MergeRespect, false},
		{"respect", MergeRespect, false},
		{" OVERWRITE ", MergeOverwrite, false},
		{"Overwrite", MergeOverwrite, false},
		{"replace", "", true},
	}
	for _, c := range cases {
		got, err := ParseMergePolicy(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseMergePolicy(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMergePolicy(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMergePolicy(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}
