package planner

import (
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/cpsat"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

type solveOutcome struct {
	status    cpsat.Status
	objective int64
	pairs     []domain.AssignmentPair
}

// solveBuilt runs the solver and translates the chosen decision variables
// back into employee/shift-instance id pairs.
func solveBuilt(b *builtModel, ctx *planningContext, limit time.Duration) *solveOutcome {
	res := (&cpsat.Solver{MaxTime: limit}).Solve(b.model)

	out := &solveOutcome{status: res.Status, objective: res.Objective}
	if res.Status != cpsat.StatusOptimal && res.Status != cpsat.StatusFeasible {
		return out
	}
	for _, vp := range b.pairs {
		if !res.Values[vp.v] {
			continue
		}
		out.pairs = append(out.pairs, domain.AssignmentPair{
			EmployeeID:      ctx.employees[vp.emp].ID,
			ShiftInstanceID: ctx.instances[vp.inst].ID,
		})
	}
	return out
}
