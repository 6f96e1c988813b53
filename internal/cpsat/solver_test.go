package cpsat

import (
	"testing"
	"time"
)

func TestSolveEmptyModel(t *testing.T) {
	m := NewModel()
	res := (&Solver{}).Solve(m)
	if res.Status != StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.Objective != 0 {
		t.Errorf("expected objective 0, got %d", res.Objective)
	}
}

func TestSolveAtMostOneWithBonus(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	c := m.NewBoolVar()
	m.AddAtMost([]BoolVar{a, b, c}, 1)
	m.AddObjectiveTerm(a, -10)
	m.AddObjectiveTerm(b, -20)
	m.AddObjectiveTerm(c, -5)

	res := (&Solver{}).Solve(m)
	if res.Status != StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.Objective != -20 {
		t.Errorf("expected objective -20, got %d", res.Objective)
	}
	if res.Values[a] || !res.Values[b] || res.Values[c] {
		t.Errorf("expected only b set, got a=%v b=%v c=%v", res.Values[a], res.Values[b], res.Values[c])
	}
}

func TestSolveEqualityCoupling(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	m.AddEqual(a, b)
	m.Fix(a, true)
	m.AddObjectiveTerm(b, 7)

	res := (&Solver{}).Solve(m)
	if res.Status != StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if !res.Values[a] || !res.Values[b] {
		t.Errorf("coupling not honoured: a=%v b=%v", res.Values[a], res.Values[b])
	}
	if res.Objective != 7 {
		t.Errorf("expected objective 7, got %d", res.Objective)
	}
}

func TestSolveInfeasible(t *testing.T) {
	m := NewModel()
	a := m.NewBoolVar()
	b := m.NewBoolVar()
	m.Fix(a, true)
	m.Fix(b, true)
	m.AddAtMost([]BoolVar{a, b}, 1)

	res := (&Solver{}).Solve(m)
	if res.Status != StatusInfeasible {
		t.Fatalf("expected INFEASIBLE, got %s", res.Status)
	}
}

func TestSolveExactlyOneWithoutCandidates(t *testing.T) {
	m := NewModel()
	m.AddExactly(nil, 1)

	res := (&Solver{}).Solve(m)
	if res.Status != StatusInfeasible {
		t.Fatalf("expected INFEASIBLE, got %s", res.Status)
	}
}

func TestSolveSlackSettlesAtExcess(t *testing.T) {
	// Three unit variables forced on, a cap of one, and two slack variables
	// absorbing the excess: sum(x) - sum(s) <= 1 with penalty 200 per slack.
	m := NewModel()
	var xs, slacks []BoolVar
	terms := []Term{}
	for i := 0; i < 3; i++ {
		x := m.NewBoolVar()
		m.Fix(x, true)
		xs = append(xs, x)
		terms = append(terms, Term{Var: x, Coeff: 1})
	}
	for i := 0; i < 2; i++ {
		s := m.NewBoolVar()
		slacks = append(slacks, s)
		terms = append(terms, Term{Var: s, Coeff: -1})
		m.AddObjectiveTerm(s, 200)
	}
	m.AddLinear(terms, -2, 1)

	res := (&Solver{}).Solve(m)
	if res.Status != StatusOptimal {
		t.Fatalf("expected OPTIMAL, got %s", res.Status)
	}
	if res.Objective != 400 {
		t.Errorf("expected objective 400, got %d", res.Objective)
	}
	for _, x := range xs {
		if !res.Values[x] {
			t.Errorf("fixed variable %d not set", x)
		}
	}
	for _, s := range slacks {
		if !res.Values[s] {
			t.Errorf("slack %d should absorb excess", s)
		}
	}
}

func TestSolveModelInvalid(t *testing.T) {
	m := NewModel()
	v := m.NewBoolVar()
	m.AddLinear([]Term{{Var: v, Coeff: 1}}, 2, 1) // inverted bounds

	res := (&Solver{}).Solve(m)
	if res.Status != StatusModelInvalid {
		t.Fatalf("expected MODEL_INVALID, got %s", res.Status)
	}
}

func TestSolveRespectsTimeLimit(t *testing.T) {
	// A large model with an already-expired deadline must not return OPTIMAL.
	m := NewModel()
	vars := make([]BoolVar, 40)
	for i := range vars {
		vars[i] = m.NewBoolVar()
		m.AddObjectiveTerm(vars[i], -1)
	}
	for i := 0; i+1 < len(vars); i++ {
		m.AddAtMost([]BoolVar{vars[i], vars[i+1]}, 1)
	}

	res := (&Solver{MaxTime: time.Nanosecond}).Solve(m)
	if res.Status == StatusOptimal {
		// The search may still finish within the first time-check window on a
		// fast machine; only a wrong status pair is a failure.
		t.Skip("search finished before the first deadline check")
	}
	if res.Status != StatusFeasible && res.Status != StatusUnknown {
		t.Fatalf("expected FEASIBLE or UNKNOWN, got %s", res.Status)
	}
}
