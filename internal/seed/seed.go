package seed

import (
	"log/slog"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
	"github.com/palliativ-netz/dienstplan/backend/internal/repository"
)

// definitionCatalogue is the organisation's standing duty catalogue. The
// on-call weekday and weekend duties exist per role, nursing additionally per
// area and (on weekends) per day/night half, the weekend on-site service per
// area including Mitte.
var definitionCatalogue = []domain.ShiftDefinition{
	{Category: domain.CategoryRBWeekday, Role: domain.RoleNursing, Area: domain.AreaNord, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryRBWeekday, Role: domain.RoleNursing, Area: domain.AreaSued, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryRBWeekday, Role: domain.RoleDoctor, Area: domain.AreaUnknown, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryRBWeekend, Role: domain.RoleNursing, Area: domain.AreaNord, TimeOfDay: domain.TimeDay},
	{Category: domain.CategoryRBWeekend, Role: domain.RoleNursing, Area: domain.AreaNord, TimeOfDay: domain.TimeNight},
	{Category: domain.CategoryRBWeekend, Role: domain.RoleNursing, Area: domain.AreaSued, TimeOfDay: domain.TimeDay},
	{Category: domain.CategoryRBWeekend, Role: domain.RoleNursing, Area: domain.AreaSued, TimeOfDay: domain.TimeNight},
	{Category: domain.CategoryRBWeekend, Role: domain.RoleDoctor, Area: domain.AreaUnknown, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryAW, Role: domain.RoleNursing, Area: domain.AreaNord, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryAW, Role: domain.RoleNursing, Area: domain.AreaSued, TimeOfDay: domain.TimeNone},
	{Category: domain.CategoryAW, Role: domain.RoleNursing, Area: domain.AreaMitte, TimeOfDay: domain.TimeNone},
}

type demoEmployee struct {
	givenName  string
	familyName string
	function   string
	area       domain.Area
	quotas     map[domain.CapacityType]int
}

var demoEmployees = []demoEmployee{
	{"Anna", "Berger", "Pflegefachkraft", domain.AreaNord, map[domain.CapacityType]int{
		domain.CapacityRBNursingWeekday: 4, domain.CapacityRBNursingWeekend: 2, domain.CapacityAWNursing: 2,
	}},
	{"Bettina", "Conrad", "Pflegefachkraft", domain.AreaNord, map[domain.CapacityType]int{
		domain.CapacityRBNursingWeekday: 4, domain.CapacityRBNursingWeekend: 2, domain.CapacityAWNursing: 2,
	}},
	{"Claudia", "Dreyer", "Pflegekraft", domain.AreaSued, map[domain.CapacityType]int{
		domain.CapacityRBNursingWeekday: 5, domain.CapacityRBNursingWeekend: 2, domain.CapacityAWNursing: 2,
	}},
	{"Dieter", "Ehlers", "Pflegekraft", domain.AreaSued, map[domain.CapacityType]int{
		domain.CapacityRBNursingWeekday: 5, domain.CapacityRBNursingWeekend: 4, domain.CapacityAWNursing: 2,
	}},
	{"Elke", "Fischer", "Pflegedienstleitung", domain.AreaMitte, map[domain.CapacityType]int{
		domain.CapacityRBNursingWeekday: 2, domain.CapacityAWNursing: 2,
	}},
	{"Frank", "Gerlach", "Arzt", domain.AreaNord, map[domain.CapacityType]int{
		domain.CapacityRBDoctorsWeekday: 8, domain.CapacityRBDoctorsWeekend: 2,
	}},
	{"Gisela", "Hartmann", "Arzt", domain.AreaSued, map[domain.CapacityType]int{
		domain.CapacityRBDoctorsWeekday: 8, domain.CapacityRBDoctorsWeekend: 2,
	}},
	{"Heiner", "Imhoff", "Honorararzt", domain.AreaUnknown, map[domain.CapacityType]int{
		domain.CapacityRBDoctorsWeekday: 6, domain.CapacityRBDoctorsWeekend: 2,
	}},
	// Not planable, must be ignored by the planner.
	{"Ingrid", "Jansen", "Verwaltung", domain.AreaMitte, nil},
	{"Jutta", "Krüger", "Physiotherapeutin", domain.AreaNord, nil},
}

// SeedDefinitions inserts the duty catalogue.
func SeedDefinitions(r *repository.Repository) {
	created := 0
	for i := range definitionCatalogue {
		definition := definitionCatalogue[i]
		definition.IsWeekday = definition.Category == domain.CategoryRBWeekday
		definition.IsWeekend = definition.Category != domain.CategoryRBWeekday
		if err := r.CreateShiftDefinition(&definition); err != nil {
			slog.Error("unable to insert shift definition", "label", definition.Label(), "error", err)
			continue
		}
		created++
	}
	slog.Info("shift definitions seeded", "count", created)
}

// SeedEmployees inserts the demo staff with their monthly quotas.
func SeedEmployees(r *repository.Repository) {
	created := 0
	for _, demo := range demoEmployees {
		employee := &domain.Employee{
			GivenName:  demo.givenName,
			FamilyName: demo.familyName,
			Function:   demo.function,
			Area:       demo.area,
		}
		if err := r.CreateEmployee(employee); err != nil {
			slog.Error("unable to insert employee", "name", employee.FullName(), "error", err)
			continue
		}
		for capacityType, maxCount := range demo.quotas {
			capacity := &domain.EmployeeCapacity{
				EmployeeID: employee.ID,
				Type:       capacityType,
				MaxCount:   maxCount,
			}
			if err := r.UpsertCapacity(capacity); err != nil {
				slog.Error("unable to insert capacity", "name", employee.FullName(), "type", capacityType, "error", err)
			}
		}
		created++
	}
	slog.Info("employees seeded", "count", created)
}

// SeedAbsences marks a few demo employees absent on fixed days of a month.
func SeedAbsences(r *repository.Repository, month string) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		slog.Error("invalid month, expected YYYY-MM", "month", month)
		return
	}

	employees, err := r.GetAllEmployees()
	if err != nil {
		slog.Error("unable to load employees", "error", err)
		return
	}

	// First three planable employees: a long weekend, a midweek day and a
	// full week off.
	offsets := [][]int{{4, 5, 6}, {10}, {14, 15, 16, 17, 18, 19, 20}}
	created := 0
	picked := 0
	for _, employee := range employees {
		if employee.PlanableRole() == domain.RoleNone {
			continue
		}
		if picked >= len(offsets) {
			break
		}
		for _, offset := range offsets[picked] {
			absence := &domain.Absence{
				EmployeeID: employee.ID,
				Date:       monthStart.AddDate(0, 0, offset),
			}
			if err := r.CreateAbsence(absence); err != nil {
				slog.Error("unable to insert absence", "name", employee.FullName(), "error", err)
				continue
			}
			created++
		}
		picked++
	}
	slog.Info("absences seeded", "month", month, "count", created)
}

// SeedInstances expands the catalogue over a month.
func SeedInstances(r *repository.Repository, month string) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		slog.Error("invalid month, expected YYYY-MM", "month", month)
		return
	}

	definitions, err := r.GetAllShiftDefinitions()
	if err != nil {
		slog.Error("unable to load shift definitions", "error", err)
		return
	}
	if len(definitions) == 0 {
		slog.Error("no shift definitions, seed them first")
		return
	}

	created, err := r.InsertShiftInstances(domain.InstancesForMonth(definitions, monthStart))
	if err != nil {
		slog.Error("unable to insert shift instances", "error", err)
		return
	}
	slog.Info("shift instances seeded", "month", month, "count", created)
}
