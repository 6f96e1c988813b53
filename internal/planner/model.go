package planner

import (
	"sort"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/cpsat"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

// Weights are the soft-constraint penalties of the objective. FillBonus is
// subtracted per filled shift and dominates every penalty, so the optimiser
// fills whatever it legally can before trading off the preferences.
type Weights struct {
	RBWeekdayPerWeek    int64 // second RB weekday within one week
	WeekendRotation     int64 // weekend duty two weekends in a row
	DayNightAlternation int64 // repeated DAY (or NIGHT) weekend duty
	WeekendFairness     int64 // weekend shifts above the per-head share
	PostWeekendMonday   int64 // RB weekday on the Monday after a weekend duty
	AreaPreference      int64 // shift outside the employee's own area
	OverplanOverage     int64 // quota overrun when overplanning is allowed
	FillBonus           int64
}

func DefaultWeights() Weights {
	return Weights{
		RBWeekdayPerWeek:    100,
		WeekendRotation:     80,
		DayNightAlternation: 60,
		WeekendFairness:     50,
		PostWeekendMonday:   70,
		AreaPreference:      40,
		OverplanOverage:     200,
		FillBonus:           1000,
	}
}

type varPair struct {
	emp  int
	inst int
	v    cpsat.BoolVar
}

type builtModel struct {
	model *cpsat.Model
	vars  map[[2]int]cpsat.BoolVar
	pairs []varPair
}

// perEmployee indexes one employee's decision variables by the groupings the
// constraints need. Weekend groupings are keyed by the Saturday's date so
// consecutive weekends are exactly seven days apart.
type perEmployee struct {
	byDate          map[string][]cpsat.BoolVar
	rbWeekdayWeek   map[int][]cpsat.BoolVar
	rbWeekdayDate   map[string][]cpsat.BoolVar
	awSat           map[string][]cpsat.BoolVar
	rbWeekendSat    map[string][]cpsat.BoolVar
	nursingDaySat   map[string][]cpsat.BoolVar
	nursingNightSat map[string][]cpsat.BoolVar
	weekendMonth    []cpsat.BoolVar
}

func newPerEmployee() *perEmployee {
	return &perEmployee{
		byDate:          make(map[string][]cpsat.BoolVar),
		rbWeekdayWeek:   make(map[int][]cpsat.BoolVar),
		rbWeekdayDate:   make(map[string][]cpsat.BoolVar),
		awSat:           make(map[string][]cpsat.BoolVar),
		rbWeekendSat:    make(map[string][]cpsat.BoolVar),
		nursingDaySat:   make(map[string][]cpsat.BoolVar),
		nursingNightSat: make(map[string][]cpsat.BoolVar),
	}
}

// saturdayOf maps a weekend date onto its Saturday.
func saturdayOf(t time.Time) time.Time {
	if t.Weekday() == time.Sunday {
		return t.AddDate(0, 0, -1)
	}
	return t
}

func buildModel(ctx *planningContext, allowOverplanning bool, w Weights) *builtModel {
	b := &builtModel{
		model: cpsat.NewModel(),
		vars:  make(map[[2]int]cpsat.BoolVar),
	}
	m := b.model

	byInst := make([][]cpsat.BoolVar, len(ctx.instances))
	perEmp := make([]*perEmployee, len(ctx.employees))
	for e := range perEmp {
		perEmp[e] = newPerEmployee()
	}

	addVar := func(e, j int) cpsat.BoolVar {
		key := [2]int{e, j}
		if v, ok := b.vars[key]; ok {
			return v
		}
		v := m.NewBoolVar()
		b.vars[key] = v
		b.pairs = append(b.pairs, varPair{emp: e, inst: j, v: v})

		inst := ctx.instances[j]
		def := inst.Definition
		pe := perEmp[e]
		day := dateKey(inst.Date)
		pe.byDate[day] = append(pe.byDate[day], v)

		switch def.Category {
		case domain.CategoryRBWeekday:
			pe.rbWeekdayWeek[inst.CalendarWeek] = append(pe.rbWeekdayWeek[inst.CalendarWeek], v)
			pe.rbWeekdayDate[day] = append(pe.rbWeekdayDate[day], v)
		case domain.CategoryRBWeekend:
			sat := dateKey(saturdayOf(inst.Date))
			pe.rbWeekendSat[sat] = append(pe.rbWeekendSat[sat], v)
			if def.Role == domain.RoleNursing {
				switch def.TimeOfDay {
				case domain.TimeDay:
					pe.nursingDaySat[sat] = append(pe.nursingDaySat[sat], v)
				case domain.TimeNight:
					pe.nursingNightSat[sat] = append(pe.nursingNightSat[sat], v)
				}
			}
		case domain.CategoryAW:
			sat := dateKey(saturdayOf(inst.Date))
			pe.awSat[sat] = append(pe.awSat[sat], v)
		}
		if def.IsWeekend && ctx.inPlanningMonth(inst.Date) {
			pe.weekendMonth = append(pe.weekendMonth, v)
		}

		byInst[j] = append(byInst[j], v)
		return v
	}

	// Candidate variables: matching role, not absent on the shift date.
	for e, emp := range ctx.employees {
		for j, inst := range ctx.instances {
			if inst.Definition.Role != emp.role {
				continue
			}
			if ctx.isAbsent(emp.ID, inst.Date) {
				continue
			}
			addVar(e, j)
		}
	}

	// Fixed assignments are forced, creating their variable if the
	// candidate filter skipped it (historic rows do not always match it).
	for _, f := range ctx.fixed {
		m.Fix(addVar(f[0], f[1]), true)
	}

	// At most one employee per shift instance; with overplanning every
	// planning-month instance must be covered (no candidates means the model
	// is infeasible, by design of the equality).
	for j, inst := range ctx.instances {
		if allowOverplanning && ctx.inPlanningMonth(inst.Date) {
			m.AddExactly(byInst[j], 1)
		} else if len(byInst[j]) > 1 {
			m.AddAtMost(byInst[j], 1)
		}
	}

	// One shift per employee and day.
	for e := range ctx.employees {
		for _, vars := range perEmp[e].byDate {
			if len(vars) > 1 {
				m.AddAtMost(vars, 1)
			}
		}
	}

	// Monthly quotas, only binding when overplanning is off.
	if !allowOverplanning {
		for e := range ctx.employees {
			for _, ct := range domain.AllCapacityTypes {
				vars := b.capacityVars(ctx, e, ct)
				if len(vars) > int(ctx.capacities[e][ct]) {
					m.AddAtMost(vars, int64(ctx.capacities[e][ct]))
				}
			}
		}
	}

	b.addWeekendCoupling(ctx)
	b.addNoMixedDayNight(ctx, perEmp)

	// Soft constraints.
	for e := range ctx.employees {
		pe := perEmp[e]

		// More than one RB weekday within a calendar week.
		for _, vars := range pe.rbWeekdayWeek {
			if n := len(vars); n >= 2 {
				aux := m.NewBoolVar()
				terms := make([]cpsat.Term, 0, n+1)
				for _, v := range vars {
					terms = append(terms, cpsat.Term{Var: v, Coeff: 1})
				}
				terms = append(terms, cpsat.Term{Var: aux, Coeff: -int64(n - 1)})
				m.AddLinear(terms, -int64(n-1), 1)
				m.AddObjectiveTerm(aux, w.RBWeekdayPerWeek)
			}
		}

		// Repeats across consecutive weekends.
		for _, sats := range consecutiveSaturdays(ctx) {
			b.penalizeRepeat(pe.awSat[sats[0]], pe.awSat[sats[1]], w.WeekendRotation)
			b.penalizeRepeat(pe.rbWeekendSat[sats[0]], pe.rbWeekendSat[sats[1]], w.WeekendRotation)
			b.penalizeRepeat(pe.nursingDaySat[sats[0]], pe.nursingDaySat[sats[1]], w.DayNightAlternation)
			b.penalizeRepeat(pe.nursingNightSat[sats[0]], pe.nursingNightSat[sats[1]], w.DayNightAlternation)
		}

		// Weekend duty followed by an RB weekday on the Monday after.
		for _, sat := range allSaturdays(ctx) {
			weekend := append(append([]cpsat.BoolVar{}, pe.awSat[sat]...), pe.rbWeekendSat[sat]...)
			monday, _ := time.Parse("2006-01-02", sat)
			mondayVars := pe.rbWeekdayDate[dateKey(monday.AddDate(0, 0, 2))]
			b.penalizeRepeat(weekend, mondayVars, w.PostWeekendMonday)
		}
	}

	// Weekend fairness against the floored per-head share.
	if len(ctx.employees) > 0 {
		weekendShifts := 0
		for _, inst := range ctx.instances {
			if inst.Definition.IsWeekend && ctx.inPlanningMonth(inst.Date) {
				weekendShifts++
			}
		}
		target := weekendShifts / len(ctx.employees)
		for e := range ctx.employees {
			b.addExcessPenalty(perEmp[e].weekendMonth, target, w.WeekendFairness)
		}
	}

	// Overplanning overage: quota overruns become penalties instead of hard
	// limits; zero quotas stay unpenalised.
	if allowOverplanning {
		for e := range ctx.employees {
			for _, ct := range domain.AllCapacityTypes {
				if quota := ctx.capacities[e][ct]; quota >= 1 {
					b.addExcessPenalty(b.capacityVars(ctx, e, ct), quota, w.OverplanOverage)
				}
			}
		}
	}

	// Area preference and the fill incentive go straight onto the decision
	// variables.
	for _, vp := range b.pairs {
		emp := ctx.employees[vp.emp]
		def := ctx.instances[vp.inst].Definition
		if prefersOtherArea(emp.Area, def.Area) {
			m.AddObjectiveTerm(vp.v, w.AreaPreference)
		}
		m.AddObjectiveTerm(vp.v, -w.FillBonus)
	}

	return b
}

// capacityVars collects the employee's planning-month variables that count
// against a capacity type.
func (b *builtModel) capacityVars(ctx *planningContext, e int, ct domain.CapacityType) []cpsat.BoolVar {
	var vars []cpsat.BoolVar
	for j, inst := range ctx.instances {
		if !ctx.inPlanningMonth(inst.Date) || !ct.Matches(inst.Definition) {
			continue
		}
		if v, ok := b.vars[[2]int{e, j}]; ok {
			vars = append(vars, v)
		}
	}
	return vars
}

// addWeekendCoupling couples weekend pairs: the Saturday and Sunday instance of one
// coupled weekend pair must be covered by the same employee. An employee who
// can serve only one of the two days is pinned to neither.
func (b *builtModel) addWeekendCoupling(ctx *planningContext) {
	type pairKey struct {
		week int
		area domain.Area
		tod  domain.TimeOfDay
	}
	type weekendPair struct{ sat, sun int }

	couple := func(groups map[pairKey]*weekendPair) {
		for _, g := range groups {
			if g.sat < 0 || g.sun < 0 {
				continue
			}
			for e := range ctx.employees {
				va, aok := b.vars[[2]int{e, g.sat}]
				vb, bok := b.vars[[2]int{e, g.sun}]
				switch {
				case aok && bok:
					b.model.AddEqual(va, vb)
				case aok:
					b.model.Fix(va, false)
				case bok:
					b.model.Fix(vb, false)
				}
			}
		}
	}

	aw := make(map[pairKey]*weekendPair)
	rb := make(map[pairKey]*weekendPair)
	for j, inst := range ctx.instances {
		def := inst.Definition
		if def.Role != domain.RoleNursing || !domain.IsWeekendDate(inst.Date) {
			continue
		}
		var groups map[pairKey]*weekendPair
		key := pairKey{week: inst.CalendarWeek, area: def.Area}
		switch def.Category {
		case domain.CategoryAW:
			groups = aw
		case domain.CategoryRBWeekend:
			groups = rb
			key.tod = def.TimeOfDay
		default:
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &weekendPair{sat: -1, sun: -1}
			groups[key] = g
		}
		if inst.Date.Weekday() == time.Saturday {
			g.sat = j
		} else {
			g.sun = j
		}
	}
	couple(aw)
	couple(rb)
}

// addNoMixedDayNight ensures that within one calendar week no employee takes a
// weekend DAY shift on one day and a NIGHT shift on the other.
func (b *builtModel) addNoMixedDayNight(ctx *planningContext, perEmp []*perEmployee) {
	for e := range ctx.employees {
		pe := perEmp[e]
		for sat, dayVars := range pe.nursingDaySat {
			nightVars := pe.nursingNightSat[sat]
			for _, a := range dayVars {
				for _, bv := range nightVars {
					if !b.sameDate(a, bv) {
						b.model.AddAtMost([]cpsat.BoolVar{a, bv}, 1)
					}
				}
			}
		}
	}
}

// sameDate reports whether two decision variables refer to instances on the
// same date (a same-day DAY/NIGHT pair is already excluded by the
// one-shift-per-day rule).
func (b *builtModel) sameDate(x, y cpsat.BoolVar) bool {
	var xi, yi int = -1, -1
	for _, vp := range b.pairs {
		if vp.v == x {
			xi = vp.inst
		}
		if vp.v == y {
			yi = vp.inst
		}
	}
	return xi == yi
}

// penalizeRepeat links "had any of a" AND "had any of b" to one penalised
// indicator, using the standard implication patterns.
func (b *builtModel) penalizeRepeat(a, bVars []cpsat.BoolVar, penalty int64) {
	if len(a) == 0 || len(bVars) == 0 || penalty == 0 {
		return
	}
	hadA := b.hadAny(a)
	hadB := b.hadAny(bVars)
	both := b.andVar(hadA, hadB)
	b.model.AddObjectiveTerm(both, penalty)
}

// hadAny returns an indicator that equals 1 iff any of the variables is set.
func (b *builtModel) hadAny(vars []cpsat.BoolVar) cpsat.BoolVar {
	m := b.model
	aux := m.NewBoolVar()
	terms := make([]cpsat.Term, 0, len(vars)+1)
	for _, v := range vars {
		m.AddLinear([]cpsat.Term{{Var: aux, Coeff: 1}, {Var: v, Coeff: -1}}, 0, 1)
		terms = append(terms, cpsat.Term{Var: v, Coeff: 1})
	}
	terms = append(terms, cpsat.Term{Var: aux, Coeff: -1})
	m.AddLinear(terms, 0, int64(len(vars)))
	return aux
}

// andVar returns c with c = a AND b via the three-inequality encoding.
func (b *builtModel) andVar(x, y cpsat.BoolVar) cpsat.BoolVar {
	m := b.model
	c := m.NewBoolVar()
	m.AddLinear([]cpsat.Term{{Var: x, Coeff: 1}, {Var: c, Coeff: -1}}, 0, 1)
	m.AddLinear([]cpsat.Term{{Var: y, Coeff: 1}, {Var: c, Coeff: -1}}, 0, 1)
	m.AddLinear([]cpsat.Term{{Var: x, Coeff: 1}, {Var: y, Coeff: 1}, {Var: c, Coeff: -1}}, -1, 1)
	return c
}

// addExcessPenalty charges penalty per unit the variable count exceeds the
// allowance, via unit slack variables: sum(x) - sum(slack) <= allowance.
func (b *builtModel) addExcessPenalty(vars []cpsat.BoolVar, allowance int, penalty int64) {
	excess := len(vars) - allowance
	if excess <= 0 || penalty == 0 {
		return
	}
	m := b.model
	terms := make([]cpsat.Term, 0, len(vars)+excess)
	for _, v := range vars {
		terms = append(terms, cpsat.Term{Var: v, Coeff: 1})
	}
	for i := 0; i < excess; i++ {
		s := m.NewBoolVar()
		terms = append(terms, cpsat.Term{Var: s, Coeff: -1})
		m.AddObjectiveTerm(s, penalty)
	}
	m.AddLinear(terms, -int64(excess), int64(allowance))
}

func prefersOtherArea(emp, shift domain.Area) bool {
	if emp != domain.AreaNord && emp != domain.AreaSued {
		return false
	}
	if shift != domain.AreaNord && shift != domain.AreaSued {
		return false
	}
	return emp != shift
}

// consecutiveSaturdays lists each pair of weekend Saturdays in the window
// that are exactly one week apart.
func consecutiveSaturdays(ctx *planningContext) [][2]string {
	sats := allSaturdays(ctx)
	var pairs [][2]string
	for i := 0; i+1 < len(sats); i++ {
		a, _ := time.Parse("2006-01-02", sats[i])
		if dateKey(a.AddDate(0, 0, 7)) == sats[i+1] {
			pairs = append(pairs, [2]string{sats[i], sats[i+1]})
		}
	}
	return pairs
}

func allSaturdays(ctx *planningContext) []string {
	seen := make(map[string]bool)
	for _, inst := range ctx.instances {
		if inst.Definition.IsWeekend && domain.IsWeekendDate(inst.Date) {
			seen[dateKey(saturdayOf(inst.Date))] = true
		}
	}
	sats := make([]string, 0, len(seen))
	for s := range seen {
		sats = append(sats, s)
	}
	sort.Strings(sats)
	return sats
}
