package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExportRoster renders the month roster as an xlsx sheet: one row per day,
// one column per shift definition, employee names in the cells.
func (h *Handler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		h.errorResponse(w, r, "invalid month, expected YYYY-MM")
		return
	}

	definitions, err := h.repository.GetAllShiftDefinitions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	entries, err := h.repository.GetRosterForMonth(month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// (date, definition label) -> employee
	type cellKey struct {
		date  string
		label string
	}
	cells := make(map[cellKey]string)
	for _, entry := range entries {
		def := &domain.ShiftDefinition{
			Category:  entry.Category,
			Role:      entry.Role,
			Area:      entry.Area,
			TimeOfDay: entry.TimeOfDay,
		}
		key := cellKey{date: entry.Date.Format("2006-01-02"), label: def.Label()}
		name := entry.GivenName + " " + entry.FamilyName
		if entry.Source == domain.SourceManual {
			name += " *"
		}
		cells[key] = name
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Dienstplan " + month
	file.SetSheetName("Sheet1", sheet)

	file.SetCellValue(sheet, "A1", "Datum")
	for col, def := range definitions {
		cell, _ := excelize.CoordinatesToCellName(col+2, 1)
		file.SetCellValue(sheet, cell, def.Label())
	}
	file.SetColWidth(sheet, "A", "A", 14)
	if len(definitions) > 0 {
		last, _ := excelize.ColumnNumberToName(len(definitions) + 1)
		file.SetColWidth(sheet, "B", last, 24)
	}

	row := 2
	for day := monthStart; day.Month() == monthStart.Month(); day = day.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		file.SetCellValue(sheet, cell, day.Format("Mon 02.01.2006"))
		for col, def := range definitions {
			key := cellKey{date: day.Format("2006-01-02"), label: def.Label()}
			if name, ok := cells[key]; ok {
				cell, _ := excelize.CoordinatesToCellName(col+2, row)
				file.SetCellValue(sheet, cell, name)
			}
		}
		row++
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=dienstplan-%s.xlsx", month))
	if err := file.Write(w); err != nil {
		h.logInternalServerError(r, err)
	}
}
