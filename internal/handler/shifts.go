package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (h *Handler) CreateShiftDefinition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category  string `json:"category" validate:"required,oneof=RB_WEEKDAY RB_WEEKEND AW"`
		Role      string `json:"role" validate:"required,oneof=NURSING DOCTOR"`
		Area      string `json:"area"`
		TimeOfDay string `json:"timeOfDay" validate:"omitempty,oneof=DAY NIGHT NONE"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	category := domain.ShiftCategory(req.Category)
	timeOfDay := domain.TimeOfDay(req.TimeOfDay)
	if timeOfDay == "" {
		timeOfDay = domain.TimeNone
	}

	definition := &domain.ShiftDefinition{
		Category:  category,
		Role:      domain.PlanableRole(req.Role),
		Area:      domain.NormalizeArea(req.Area),
		TimeOfDay: timeOfDay,
		IsWeekday: category == domain.CategoryRBWeekday,
		IsWeekend: category != domain.CategoryRBWeekday,
	}

	if err := h.repository.CreateShiftDefinition(definition); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "shift_definitions_category_role_area_time_of_day_key":
			h.errorResponse(w, r, "this shift definition already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift definition created", definition)
}

func (h *Handler) GetAllShiftDefinitions(w http.ResponseWriter, r *http.Request) {
	definitions, err := h.repository.GetAllShiftDefinitions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift definitions fetched", definitions)
}

func (h *Handler) GetShiftInstances(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		h.errorResponse(w, r, "invalid month, expected YYYY-MM")
		return
	}

	instances, err := h.repository.GetShiftInstancesBetween(monthStart, monthStart.AddDate(0, 1, -1))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift instances fetched", instances)
}

// GenerateShiftInstances expands every definition over the requested month.
// Dates that already have their instance are skipped, so the operation can be
// repeated after new definitions are added.
func (h *Handler) GenerateShiftInstances(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Month string `json:"month" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	monthStart, err := time.Parse("2006-01", req.Month)
	if err != nil {
		h.errorResponse(w, r, "invalid month, expected YYYY-MM")
		return
	}

	definitions, err := h.repository.GetAllShiftDefinitions()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	created, err := h.repository.InsertShiftInstances(domain.InstancesForMonth(definitions, monthStart))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift instances generated", map[string]any{
		"month":   req.Month,
		"created": created,
	})
}
