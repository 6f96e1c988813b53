package domain

import (
	"fmt"
	"time"
)

// ShiftCategory distinguishes the duty kinds of the roster.
type ShiftCategory string

const (
	// CategoryRBWeekday is on-call duty (Rufbereitschaft) on weekdays.
	CategoryRBWeekday ShiftCategory = "RB_WEEKDAY"
	// CategoryRBWeekend is on-call duty on Saturdays and Sundays.
	CategoryRBWeekend ShiftCategory = "RB_WEEKEND"
	// CategoryAW is the weekend on-site service (Außendienst-Wochenende).
	CategoryAW ShiftCategory = "AW"
)

type TimeOfDay string

const (
	TimeDay   TimeOfDay = "DAY"
	TimeNight TimeOfDay = "NIGHT"
	TimeNone  TimeOfDay = "NONE"
)

// ShiftDefinition is a recurring duty template. The tuple
// (category, role, area, time of day) is unique.
type ShiftDefinition struct {
	ID        int64         `json:"id"`
	Category  ShiftCategory `json:"category"`
	Role      PlanableRole  `json:"role"`
	Area      Area          `json:"area"`
	TimeOfDay TimeOfDay     `json:"timeOfDay"`
	IsWeekday bool          `json:"isWeekday"`
	IsWeekend bool          `json:"isWeekend"`
}

func (d *ShiftDefinition) Label() string {
	return fmt.Sprintf("%s %s %s %s", d.Category, d.Role, d.Area, d.TimeOfDay)
}

// ShiftInstance is the realisation of a definition on a concrete date.
// (definition, date) is unique; calendar week and month tag derive from the
// date.
type ShiftInstance struct {
	ID           int64            `json:"id"`
	DefinitionID int64            `json:"definitionID"`
	Definition   *ShiftDefinition `json:"definition,omitempty"`
	Date         time.Time        `json:"date"`
	CalendarWeek int              `json:"calendarWeek"`
	Month        string           `json:"month"`
}

// MonthTag formats a date as the roster's YYYY-MM month key.
func MonthTag(t time.Time) string {
	return t.Format("2006-01")
}

// ISOWeek returns the ISO-8601 week number of a date.
func ISOWeek(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

func IsWeekendDate(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// InstancesForMonth expands the definitions over every matching date of the
// month containing monthStart. Weekday definitions land on Monday to Friday,
// weekend definitions on Saturday and Sunday.
func InstancesForMonth(definitions []*ShiftDefinition, monthStart time.Time) []*ShiftInstance {
	first := time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	var instances []*ShiftInstance
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		weekend := IsWeekendDate(day)
		for _, def := range definitions {
			if weekend && !def.IsWeekend || !weekend && !def.IsWeekday {
				continue
			}
			instances = append(instances, &ShiftInstance{
				DefinitionID: def.ID,
				Definition:   def,
				Date:         day,
				CalendarWeek: ISOWeek(day),
				Month:        MonthTag(day),
			})
		}
	}
	return instances
}
