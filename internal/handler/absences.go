package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (h *Handler) CreateAbsence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID int64  `json:"employeeID" validate:"required"`
		Date       string `json:"date" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.errorResponse(w, r, "invalid date, expected YYYY-MM-DD")
		return
	}

	absence := &domain.Absence{EmployeeID: req.EmployeeID, Date: day}
	if err := h.repository.CreateAbsence(absence); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// ON CONFLICT DO NOTHING returns no row when the absence exists.
			h.successResponse(w, r, "absence already recorded", nil)
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "absences_employee_id_fkey":
			h.errorResponse(w, r, "employee not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "absence recorded", absence)
}

func (h *Handler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		h.errorResponse(w, r, "invalid month, expected YYYY-MM")
		return
	}

	absences, err := h.repository.GetAbsencesBetween(monthStart, monthStart.AddDate(0, 1, -1))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "absences fetched", absences)
}

func (h *Handler) DeleteAbsence(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid absence id")
		return
	}

	if err := h.repository.DeleteAbsence(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "absence deleted", nil)
}
