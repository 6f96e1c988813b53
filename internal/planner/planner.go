// Package planner implements the monthly duty-roster auto-planning
// subsystem: it assembles a self-contained planning context from the store,
// translates the coverage rules into a constraint model, solves it with the
// cpsat engine and writes the resulting assignments back under a merge
// policy.
package planner

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/cpsat"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

// MergePolicy controls how the writer treats assignments that already exist
// in the planning month.
type MergePolicy string

const (
	// MergeRespect keeps every existing row and only fills gaps.
	MergeRespect MergePolicy = "RESPECT"
	// MergeOverwrite replaces the month's solver rows; manual rows stay.
	MergeOverwrite MergePolicy = "OVERWRITE"
)

var (
	ErrMalformedDate      = errors.New("malformed planning date")
	ErrEndBeforeStart     = errors.New("end date lies before start date")
	ErrOutsideMonth       = errors.New("end date lies outside the planning month")
	ErrUnknownMergePolicy = errors.New("unknown merge policy")
	// ErrDataConsistency wraps loader-level failures: broken references or
	// inconsistent derived fields in the snapshot.
	ErrDataConsistency = errors.New("inconsistent planning data")
)

// ParseMergePolicy accepts the policy case-insensitively.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MergeRespect), "":
		return MergeRespect, nil
	case string(MergeOverwrite):
		return MergeOverwrite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMergePolicy, s)
	}
}

// PlanRequest is the single external operation's input. Absences supplements
// the stored absence set for this run only.
type PlanRequest struct {
	StartDate           time.Time
	EndDate             time.Time
	ExistingAssignments MergePolicy
	AllowOverplanning   bool
	Absences            []domain.Absence
	TimeLimitSeconds    float64
}

type PlanResult struct {
	Status             string `json:"status"`
	ObjectiveValue     int64  `json:"objectiveValue"`
	AssignmentsCreated int    `json:"assignmentsCreated"`
	Month              string `json:"month"`
}

// Store is the relational snapshot the planner reads from and writes to.
// *repository.Repository implements it.
type Store interface {
	GetAllEmployees() ([]*domain.Employee, error)
	GetAllCapacities() ([]*domain.EmployeeCapacity, error)
	GetShiftInstancesBetween(from, to time.Time) ([]*domain.ShiftInstance, error)
	GetAssignmentsBetween(from, to time.Time) ([]*domain.Assignment, error)
	GetAbsencesBetween(from, to time.Time) ([]*domain.Absence, error)
	InsertMissingAssignments(pairs []domain.AssignmentPair) (int, error)
	ReplaceSolverAssignments(from, to time.Time, pairs []domain.AssignmentPair) (int, error)
}

type Planner struct {
	store   Store
	weights Weights
}

func New(store Store) *Planner {
	return &Planner{store: store, weights: DefaultWeights()}
}

// NewWithWeights allows callers to tune the soft-constraint penalties.
func NewWithWeights(store Store, w Weights) *Planner {
	return &Planner{store: store, weights: w}
}

// Plan runs one auto-planning pass over the planning month derived from the
// request's start date. Nothing is written unless the solve ends OPTIMAL or
// FEASIBLE; INFEASIBLE is a normal outcome, not an error.
func (p *Planner) Plan(req *PlanRequest) (*PlanResult, error) {
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrMalformedDate
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrEndBeforeStart
	}
	policy, err := ParseMergePolicy(string(req.ExistingAssignments))
	if err != nil {
		return nil, err
	}

	ctx, err := loadContext(p.store, req, policy)
	if err != nil {
		return nil, err
	}

	built := buildModel(ctx, req.AllowOverplanning, p.weights)

	var limit time.Duration
	if req.TimeLimitSeconds > 0 {
		limit = time.Duration(req.TimeLimitSeconds * float64(time.Second))
	}
	outcome := solveBuilt(built, ctx, limit)

	result := &PlanResult{
		Status:         outcome.status.String(),
		ObjectiveValue: outcome.objective,
		Month:          ctx.month,
	}
	if outcome.status != cpsat.StatusOptimal && outcome.status != cpsat.StatusFeasible {
		return result, nil
	}

	created, err := p.writeAssignments(ctx, policy, outcome.pairs)
	if err != nil {
		return nil, err
	}
	result.AssignmentsCreated = created
	return result, nil
}
