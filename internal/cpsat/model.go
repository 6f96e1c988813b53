// Package cpsat implements a small constraint-optimisation engine over
// boolean variables: linear constraints with integer bounds, a weighted
// linear objective and an exact branch-and-bound solver with bounds
// propagation and a wall-clock limit.
package cpsat

import "fmt"

// BoolVar identifies a 0/1 decision variable of a Model.
type BoolVar int

// Term is one coefficient * variable summand of a linear expression.
type Term struct {
	Var   BoolVar
	Coeff int64
}

type linearConstraint struct {
	terms []Term
	lb    int64
	ub    int64
}

// Model collects variables, linear constraints and the objective. It is not
// safe for concurrent mutation; build it fully, then hand it to a Solver.
type Model struct {
	numVars int
	constrs []linearConstraint
	obj     map[BoolVar]int64
}

func NewModel() *Model {
	return &Model{obj: make(map[BoolVar]int64)}
}

func (m *Model) NewBoolVar() BoolVar {
	v := BoolVar(m.numVars)
	m.numVars++
	return v
}

func (m *Model) NumVars() int {
	return m.numVars
}

// AddLinear constrains lb <= sum(terms) <= ub.
func (m *Model) AddLinear(terms []Term, lb, ub int64) {
	m.constrs = append(m.constrs, linearConstraint{terms: terms, lb: lb, ub: ub})
}

// AddAtMost constrains sum(vars) <= n.
func (m *Model) AddAtMost(vars []BoolVar, n int64) {
	m.AddLinear(unitTerms(vars), 0, n)
}

// AddExactly constrains sum(vars) == n. An empty variable set with n > 0 is
// a legal, unsatisfiable constraint.
func (m *Model) AddExactly(vars []BoolVar, n int64) {
	m.AddLinear(unitTerms(vars), n, n)
}

// AddEqual constrains a == b.
func (m *Model) AddEqual(a, b BoolVar) {
	m.AddLinear([]Term{{Var: a, Coeff: 1}, {Var: b, Coeff: -1}}, 0, 0)
}

// Fix pins a variable to a constant value.
func (m *Model) Fix(v BoolVar, value bool) {
	var n int64
	if value {
		n = 1
	}
	m.AddLinear([]Term{{Var: v, Coeff: 1}}, n, n)
}

// AddObjectiveTerm adds coeff * v to the minimised objective. Repeated calls
// for the same variable accumulate.
func (m *Model) AddObjectiveTerm(v BoolVar, coeff int64) {
	m.obj[v] += coeff
}

// Validate reports structural defects that make the model unsolvable as
// stated (out-of-range variables, inverted bounds). The solver refuses such
// models with StatusModelInvalid.
func (m *Model) Validate() error {
	for i, c := range m.constrs {
		if c.lb > c.ub {
			return fmt.Errorf("constraint %d: lower bound %d above upper bound %d", i, c.lb, c.ub)
		}
		for _, t := range c.terms {
			if t.Var < 0 || int(t.Var) >= m.numVars {
				return fmt.Errorf("constraint %d: unknown variable %d", i, t.Var)
			}
		}
	}
	for v := range m.obj {
		if v < 0 || int(v) >= m.numVars {
			return fmt.Errorf("objective: unknown variable %d", v)
		}
	}
	return nil
}

func unitTerms(vars []BoolVar) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coeff: 1}
	}
	return terms
}
