package planner

import "github.com/palliativ-netz/dienstplan/backend/internal/domain"

// writeAssignments persists the solution for the planning month only; the
// surrounding context (previous month, tail Sunday) is never written.
//
// Under RESPECT the insert skips pairs that already exist, so a re-run over a
// fully planned month creates nothing. OVERWRITE first clears the month's
// solver rows, keeps manual ones, and inserts the fresh solution; it runs
// even when the solution is empty so stale solver rows disappear.
func (p *Planner) writeAssignments(ctx *planningContext, policy MergePolicy, pairs []domain.AssignmentPair) (int, error) {
	monthPairs := make([]domain.AssignmentPair, 0, len(pairs))
	for _, pair := range pairs {
		j, ok := ctx.instIndex[pair.ShiftInstanceID]
		if !ok || !ctx.inPlanningMonth(ctx.instances[j].Date) {
			continue
		}
		monthPairs = append(monthPairs, pair)
	}

	if policy == MergeOverwrite {
		return p.store.ReplaceSolverAssignments(ctx.monthStart, ctx.monthEnd, monthPairs)
	}
	return p.store.InsertMissingAssignments(monthPairs)
}
