package domain

import (
	"strings"
	"time"
)

// PlanableRole is the duty role an employee can be planned for.
type PlanableRole string

const (
	RoleNursing PlanableRole = "NURSING"
	RoleDoctor  PlanableRole = "DOCTOR"
	// RoleNone marks an employee the auto-planner must ignore.
	RoleNone PlanableRole = ""
)

type Employee struct {
	ID         int64     `json:"id"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	Function   string    `json:"function"`
	Area       Area      `json:"area"`
	CreatedAt  time.Time `json:"createdAt"`
	Version    int32     `json:"-"`
}

// PlanableRole maps the employee's free-form function to a duty role.
func (e *Employee) PlanableRole() PlanableRole {
	return RoleForFunction(e.Function)
}

func (e *Employee) FullName() string {
	return e.GivenName + " " + e.FamilyName
}

// RoleForFunction classifies a function string. Nursing staff and the nursing
// team lead are planable as NURSING, employed and contract physicians as
// DOCTOR. Everything else (physiotherapy, administration, unknown, empty)
// is not planable and returns RoleNone.
func RoleForFunction(function string) PlanableRole {
	switch strings.ToLower(strings.TrimSpace(function)) {
	case "pflegefachkraft", "pflegekraft", "pflegedienstleitung":
		return RoleNursing
	case "arzt", "honorararzt":
		return RoleDoctor
	default:
		return RoleNone
	}
}
