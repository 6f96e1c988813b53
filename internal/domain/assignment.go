package domain

import "time"

// AssignmentSource records who created an assignment row.
type AssignmentSource string

const (
	SourceSolver AssignmentSource = "SOLVER"
	SourceManual AssignmentSource = "MANUAL"
)

// Assignment binds an employee to a shift instance. (employee, shift instance)
// is unique in the store.
type Assignment struct {
	ID              int64            `json:"id"`
	EmployeeID      int64            `json:"employeeID"`
	ShiftInstanceID int64            `json:"shiftInstanceID"`
	Source          AssignmentSource `json:"source"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// AssignmentPair is the solver's output unit.
type AssignmentPair struct {
	EmployeeID      int64 `json:"employeeID"`
	ShiftInstanceID int64 `json:"shiftInstanceID"`
}

// Absence blocks an employee from every shift instance on that date.
type Absence struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeID"`
	Date       time.Time `json:"date"`
}

// RosterEntry is one row of the readable month roster.
type RosterEntry struct {
	Date       time.Time        `json:"date"`
	Category   ShiftCategory    `json:"category"`
	Role       PlanableRole     `json:"role"`
	Area       Area             `json:"area"`
	TimeOfDay  TimeOfDay        `json:"timeOfDay"`
	EmployeeID int64            `json:"employeeID"`
	GivenName  string           `json:"givenName"`
	FamilyName string           `json:"familyName"`
	Source     AssignmentSource `json:"source"`
}

// RosterPlannedEvent is published to the roster_events queue after a
// successful planning run and consumed by the notifier worker.
type RosterPlannedEvent struct {
	Month              string    `json:"month"`
	Status             string    `json:"status"`
	ObjectiveValue     int64     `json:"objectiveValue"`
	AssignmentsCreated int       `json:"assignmentsCreated"`
	MergePolicy        string    `json:"mergePolicy"`
	PlannedAt          time.Time `json:"plannedAt"`
}
