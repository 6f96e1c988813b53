package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
)

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GivenName  string `json:"givenName" validate:"required"`
		FamilyName string `json:"familyName" validate:"required"`
		Function   string `json:"function" validate:"required"`
		Area       string `json:"area"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employee := &domain.Employee{
		GivenName:  req.GivenName,
		FamilyName: req.FamilyName,
		Function:   req.Function,
		Area:       domain.NormalizeArea(req.Area),
	}

	if err := h.repository.CreateEmployee(employee); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "employees_given_name_family_name_key":
			h.errorResponse(w, r, "an employee with this name already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "employee created", employee)
}

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employees fetched", employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	h.successResponse(w, r, "employee fetched", employee)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	var req struct {
		GivenName  *string `json:"givenName"`
		FamilyName *string `json:"familyName"`
		Function   *string `json:"function"`
		Area       *string `json:"area"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.GivenName != nil {
		employee.GivenName = *req.GivenName
	}
	if req.FamilyName != nil {
		employee.FamilyName = *req.FamilyName
	}
	if req.Function != nil {
		employee.Function = *req.Function
	}
	if req.Area != nil {
		employee.Area = domain.NormalizeArea(*req.Area)
	}

	if err := h.repository.UpdateEmployee(employee); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employee updated", employee)
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	if err := h.repository.DeleteEmployee(employee.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "employee deleted", nil)
}

func (h *Handler) GetEmployeeCapacities(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	capacities, err := h.repository.GetCapacitiesByEmployee(employee.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "capacities fetched", capacities)
}

func (h *Handler) PutEmployeeCapacity(w http.ResponseWriter, r *http.Request) {
	employee := r.Context().Value(EmployeeCtx).(*domain.Employee)

	var req struct {
		Type     string `json:"type" validate:"required"`
		MaxCount int    `json:"maxCount" validate:"gte=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	capacityType := domain.CapacityType(req.Type)
	known := false
	for _, ct := range domain.AllCapacityTypes {
		if ct == capacityType {
			known = true
			break
		}
	}
	if !known {
		h.errorResponse(w, r, "unknown capacity type")
		return
	}

	capacity := &domain.EmployeeCapacity{
		EmployeeID: employee.ID,
		Type:       capacityType,
		MaxCount:   req.MaxCount,
	}
	if err := h.repository.UpsertCapacity(capacity); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "capacity saved", capacity)
}
