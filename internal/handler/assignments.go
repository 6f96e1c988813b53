package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

// CreateManualAssignment records a coordinator's hand-made assignment. Manual
// rows are never rewritten by the auto-planner.
func (h *Handler) CreateManualAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID      int64 `json:"employeeID" validate:"required"`
		ShiftInstanceID int64 `json:"shiftInstanceID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	assignment := &domain.Assignment{
		EmployeeID:      req.EmployeeID,
		ShiftInstanceID: req.ShiftInstanceID,
		Source:          domain.SourceManual,
	}

	if err := h.repository.CreateAssignment(assignment); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "assignments_employee_id_shift_instance_id_key":
				h.errorResponse(w, r, "this assignment already exists")
			case "assignments_employee_id_fkey":
				h.errorResponse(w, r, "employee not found")
			case "assignments_shift_instance_id_fkey":
				h.errorResponse(w, r, "shift instance not found")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "assignment created", assignment)
}

func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid assignment id")
		return
	}

	if err := h.repository.DeleteAssignment(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "assignment deleted", nil)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if _, err := time.Parse("2006-01", month); err != nil {
		h.errorResponse(w, r, "invalid month, expected YYYY-MM")
		return
	}

	entries, err := h.repository.GetRosterForMonth(month)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "roster fetched", entries)
}
