package cpsat

import (
	"sort"
	"time"
)

// Status is the outcome of a solve run. The names mirror the usual CP-SAT
// vocabulary so callers can surface them verbatim.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
	StatusModelInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusModelInvalid:
		return "MODEL_INVALID"
	default:
		return "UNKNOWN"
	}
}

// Result carries the best solution found. Values is indexed by BoolVar and
// only meaningful for OPTIMAL and FEASIBLE. Objective is zero otherwise.
type Result struct {
	Status    Status
	Objective int64
	Values    []bool
}

// Solver runs an exact depth-first branch-and-bound search with bounds
// propagation. MaxTime limits the wall clock; zero means unbounded. When the
// limit expires the best incumbent (if any) is returned as FEASIBLE.
type Solver struct {
	MaxTime time.Duration
}

const timeCheckInterval = 256

func (s *Solver) Solve(m *Model) Result {
	if err := m.Validate(); err != nil {
		return Result{Status: StatusModelInvalid}
	}

	st := newSearch(m)
	if s.MaxTime > 0 {
		st.deadline = time.Now().Add(s.MaxTime)
		st.hasDeadline = true
	}

	// Root propagation catches pinned variables and trivially unsatisfiable
	// constraints before any branching.
	if st.propagateAll() {
		st.dfs()
	}

	if st.aborted {
		if st.haveBest {
			return Result{Status: StatusFeasible, Objective: st.bestObj, Values: st.best}
		}
		return Result{Status: StatusUnknown}
	}
	if st.haveBest {
		return Result{Status: StatusOptimal, Objective: st.bestObj, Values: st.best}
	}
	return Result{Status: StatusInfeasible}
}

type trailEntry struct {
	v   BoolVar
	val int8
}

type search struct {
	m     *Model
	watch [][]int // var -> indices of constraints containing it

	assign []int8 // -1 unassigned, else 0/1
	minSum []int64
	maxSum []int64
	objLB  int64
	trail  []trailEntry

	order []BoolVar // branching order, cheapest objective contribution first

	best     []bool
	bestObj  int64
	haveBest bool

	deadline    time.Time
	hasDeadline bool
	nodes       int
	aborted     bool
}

func newSearch(m *Model) *search {
	st := &search{
		m:      m,
		watch:  make([][]int, m.numVars),
		assign: make([]int8, m.numVars),
		minSum: make([]int64, len(m.constrs)),
		maxSum: make([]int64, len(m.constrs)),
	}
	for i := range st.assign {
		st.assign[i] = -1
	}
	for ci, c := range m.constrs {
		for _, t := range c.terms {
			st.watch[t.Var] = append(st.watch[t.Var], ci)
			st.minSum[ci] += minInt64(0, t.Coeff)
			st.maxSum[ci] += maxInt64(0, t.Coeff)
		}
	}
	for _, coeff := range m.obj {
		st.objLB += minInt64(0, coeff)
	}

	st.order = make([]BoolVar, m.numVars)
	for i := range st.order {
		st.order[i] = BoolVar(i)
	}
	// Branch on the variables that can improve the objective most, first.
	sort.SliceStable(st.order, func(i, j int) bool {
		return m.obj[st.order[i]] < m.obj[st.order[j]]
	})

	return st
}

// set assigns v and incrementally updates every affected constraint and the
// objective lower bound. It returns false when some constraint becomes
// unsatisfiable.
func (st *search) set(v BoolVar, val int8) bool {
	st.assign[v] = val
	st.trail = append(st.trail, trailEntry{v: v, val: val})

	if coeff, ok := st.m.obj[v]; ok {
		st.objLB += int64(val)*coeff - minInt64(0, coeff)
	}

	ok := true
	for _, ci := range st.watch[v] {
		coeff := st.coeffIn(ci, v)
		st.minSum[ci] += int64(val)*coeff - minInt64(0, coeff)
		st.maxSum[ci] += int64(val)*coeff - maxInt64(0, coeff)
		c := &st.m.constrs[ci]
		if st.minSum[ci] > c.ub || st.maxSum[ci] < c.lb {
			ok = false
		}
	}
	return ok
}

func (st *search) undoTo(mark int) {
	for i := len(st.trail) - 1; i >= mark; i-- {
		e := st.trail[i]
		if coeff, ok := st.m.obj[e.v]; ok {
			st.objLB -= int64(e.val)*coeff - minInt64(0, coeff)
		}
		for _, ci := range st.watch[e.v] {
			coeff := st.coeffIn(ci, e.v)
			st.minSum[ci] -= int64(e.val)*coeff - minInt64(0, coeff)
			st.maxSum[ci] -= int64(e.val)*coeff - maxInt64(0, coeff)
		}
		st.assign[e.v] = -1
	}
	st.trail = st.trail[:mark]
}

func (st *search) coeffIn(ci int, v BoolVar) int64 {
	for _, t := range st.m.constrs[ci].terms {
		if t.Var == v {
			return t.Coeff
		}
	}
	return 0
}

// propagateConstraints runs unit-style bounds propagation to a fixpoint over
// the given constraint queue. It returns false on conflict.
func (st *search) propagateConstraints(queue []int) bool {
	for len(queue) > 0 {
		ci := queue[0]
		queue = queue[1:]
		c := &st.m.constrs[ci]
		if st.minSum[ci] > c.ub || st.maxSum[ci] < c.lb {
			return false
		}
		for _, t := range c.terms {
			if st.assign[t.Var] != -1 {
				continue
			}
			lo := minInt64(0, t.Coeff)
			hi := maxInt64(0, t.Coeff)

			// Would v = 1 break the constraint? Then v must be 0, and
			// symmetrically for v = 0.
			oneBad := st.minSum[ci]-lo+t.Coeff > c.ub || st.maxSum[ci]-hi+t.Coeff < c.lb
			zeroBad := st.minSum[ci]-lo > c.ub || st.maxSum[ci]-hi < c.lb
			if oneBad && zeroBad {
				return false
			}
			var forced int8 = -1
			if oneBad {
				forced = 0
			} else if zeroBad {
				forced = 1
			}
			if forced == -1 {
				continue
			}
			if !st.set(t.Var, forced) {
				return false
			}
			queue = append(queue, st.watch[t.Var]...)
		}
	}
	return true
}

func (st *search) propagateAll() bool {
	queue := make([]int, len(st.m.constrs))
	for i := range queue {
		queue[i] = i
	}
	return st.propagateConstraints(queue)
}

func (st *search) assignAndPropagate(v BoolVar, val int8) bool {
	if !st.set(v, val) {
		return false
	}
	queue := append([]int(nil), st.watch[v]...)
	return st.propagateConstraints(queue)
}

func (st *search) pickVar() BoolVar {
	for _, v := range st.order {
		if st.assign[v] == -1 {
			return v
		}
	}
	return -1
}

func (st *search) checkTime() bool {
	st.nodes++
	if !st.hasDeadline || st.nodes%timeCheckInterval != 0 {
		return st.aborted
	}
	if time.Now().After(st.deadline) {
		st.aborted = true
	}
	return st.aborted
}

func (st *search) dfs() {
	if st.checkTime() {
		return
	}
	if st.haveBest && st.objLB >= st.bestObj {
		return
	}

	v := st.pickVar()
	if v == -1 {
		// Full assignment; non-conflicting sums imply all constraints hold
		// and objLB equals the exact objective value.
		st.best = make([]bool, len(st.assign))
		for i, val := range st.assign {
			st.best[i] = val == 1
		}
		st.bestObj = st.objLB
		st.haveBest = true
		return
	}

	for _, val := range st.valueOrder(v) {
		mark := len(st.trail)
		if st.assignAndPropagate(v, val) {
			st.dfs()
		}
		st.undoTo(mark)
		if st.aborted {
			return
		}
		if st.haveBest && st.objLB >= st.bestObj {
			return
		}
	}
}

// valueOrder tries the objective-improving value first so the first full
// assignment found is already close to optimal.
func (st *search) valueOrder(v BoolVar) [2]int8 {
	if st.m.obj[v] < 0 {
		return [2]int8{1, 0}
	}
	return [2]int8{0, 1}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
