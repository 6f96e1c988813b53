package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/palliativ-netz/dienstplan/backend/internal/domain"
	"github.com/palliativ-netz/dienstplan/backend/internal/planner"
	amqp "github.com/rabbitmq/amqp091-go"
)

const rosterEventsQueue = "roster_events"

// PlanRoster runs one auto-planning pass over a month. A redis lock keyed by
// the month serialises concurrent runs; the second caller gets an error
// instead of a second solve.
func (h *Handler) PlanRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate           string `json:"startDate" validate:"required"`
		EndDate             string `json:"endDate" validate:"required"`
		ExistingAssignments string `json:"existingAssignments"`
		AllowOverplanning   bool   `json:"allowOverplanning"`
		Absences            []struct {
			EmployeeID int64  `json:"employeeID" validate:"required"`
			Date       string `json:"date" validate:"required"`
		} `json:"absences" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.errorResponse(w, r, "invalid start date, expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.errorResponse(w, r, "invalid end date, expected YYYY-MM-DD")
		return
	}

	planReq := &planner.PlanRequest{
		StartDate:           startDate,
		EndDate:             endDate,
		ExistingAssignments: planner.MergePolicy(req.ExistingAssignments),
		AllowOverplanning:   req.AllowOverplanning,
		TimeLimitSeconds:    float64(h.config.Planner.TimeLimit),
	}
	for _, a := range req.Absences {
		day, err := time.Parse("2006-01-02", a.Date)
		if err != nil {
			h.errorResponse(w, r, fmt.Sprintf("invalid absence date %q, expected YYYY-MM-DD", a.Date))
			return
		}
		planReq.Absences = append(planReq.Absences, domain.Absence{EmployeeID: a.EmployeeID, Date: day})
	}

	month := domain.MonthTag(startDate)
	lockKey := "roster:plan:" + month
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	locked, err := h.redisClient.SetNX(ctx, lockKey, 1, time.Duration(h.config.Redis.LockExpiration)*time.Second).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "a planning run for this month is already in progress")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			slog.Warn("failed to release plan lock", "key", lockKey, "error", err)
		}
	}()

	result, err := h.planner.Plan(planReq)
	if err != nil {
		switch {
		case errors.Is(err, planner.ErrMalformedDate),
			errors.Is(err, planner.ErrEndBeforeStart),
			errors.Is(err, planner.ErrOutsideMonth),
			errors.Is(err, planner.ErrUnknownMergePolicy),
			errors.Is(err, planner.ErrDataConsistency):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.publishRosterPlanned(result, req.ExistingAssignments)

	h.successResponse(w, r, "planning finished", result)
}

// publishRosterPlanned hands the outcome to the notifier worker. A broker
// failure must not fail the planning request, the roster is already written.
func (h *Handler) publishRosterPlanned(result *planner.PlanResult, mergePolicy string) {
	event := domain.RosterPlannedEvent{
		Month:              result.Month,
		Status:             result.Status,
		ObjectiveValue:     result.ObjectiveValue,
		AssignmentsCreated: result.AssignmentsCreated,
		MergePolicy:        mergePolicy,
		PlannedAt:          time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal roster event", "month", result.Month, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.eventsChannel.PublishWithContext(ctx, "", rosterEventsQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}); err != nil {
		slog.Warn("failed to publish roster event", "month", result.Month, "error", err)
	}
}
