package domain

// CapacityType names a monthly duty quota. A missing row for an employee is
// equivalent to a quota of zero.
type CapacityType string

const (
	CapacityRBNursingWeekday CapacityType = "RB_NURSING_WEEKDAY"
	CapacityRBNursingWeekend CapacityType = "RB_NURSING_WEEKEND"
	CapacityRBDoctorsWeekday CapacityType = "RB_DOCTORS_WEEKDAY"
	CapacityRBDoctorsWeekend CapacityType = "RB_DOCTORS_WEEKEND"
	CapacityAWNursing        CapacityType = "AW_NURSING"
)

// AllCapacityTypes lists every quota kind; the loader defaults each one to
// zero for employees without a row.
var AllCapacityTypes = []CapacityType{
	CapacityRBNursingWeekday,
	CapacityRBNursingWeekend,
	CapacityRBDoctorsWeekday,
	CapacityRBDoctorsWeekend,
	CapacityAWNursing,
}

type EmployeeCapacity struct {
	ID         int64        `json:"id"`
	EmployeeID int64        `json:"employeeID"`
	Type       CapacityType `json:"type"`
	MaxCount   int          `json:"maxCount"`
}

// capacityRule describes which shifts count against a capacity type.
// RB_NURSING_WEEKEND is the single type that aggregates DAY and NIGHT;
// every other type counts only shifts with time of day NONE.
type capacityRule struct {
	category     ShiftCategory
	role         PlanableRole
	anyTimeOfDay bool
}

var capacityRules = map[CapacityType]capacityRule{
	CapacityRBNursingWeekday: {category: CategoryRBWeekday, role: RoleNursing},
	CapacityRBNursingWeekend: {category: CategoryRBWeekend, role: RoleNursing, anyTimeOfDay: true},
	CapacityRBDoctorsWeekday: {category: CategoryRBWeekday, role: RoleDoctor},
	CapacityRBDoctorsWeekend: {category: CategoryRBWeekend, role: RoleDoctor},
	CapacityAWNursing:        {category: CategoryAW, role: RoleNursing},
}

// Matches reports whether a shift definition counts against the capacity type.
func (ct CapacityType) Matches(def *ShiftDefinition) bool {
	rule, ok := capacityRules[ct]
	if !ok {
		return false
	}
	if def.Category != rule.category || def.Role != rule.role {
		return false
	}
	return rule.anyTimeOfDay || def.TimeOfDay == TimeNone
}
