package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/palliativ-netz/dienstplan/backend/internal/config"
	"github.com/palliativ-netz/dienstplan/backend/internal/planner"
	"github.com/palliativ-netz/dienstplan/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate      *validator.Validate
	config        *config.Config
	repository    *repository.Repository
	planner       *planner.Planner
	translator    ut.Translator
	eventsChannel *amqp.Channel
	redisClient   *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, eventsCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:      validate,
		config:        cfg,
		repository:    repo,
		planner:       planner.New(repo),
		translator:    trans,
		eventsChannel: eventsCh,
		redisClient:   rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.requestID)
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// Every route requires a valid SSO-issued token.
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", h.CreateEmployee)
			r.Get("/", h.GetAllEmployees)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.employee)
				r.Get("/", h.GetEmployee)
				r.Patch("/", h.UpdateEmployee)
				r.Delete("/", h.DeleteEmployee)
				r.Get("/capacities", h.GetEmployeeCapacities)
				r.Put("/capacities", h.PutEmployeeCapacity)
			})
		})

		r.Route("/shift-definitions", func(r chi.Router) {
			r.Post("/", h.CreateShiftDefinition)
			r.Get("/", h.GetAllShiftDefinitions)
		})

		r.Route("/shift-instances", func(r chi.Router) {
			r.Get("/", h.GetShiftInstances)
			r.Post("/generate", h.GenerateShiftInstances)
		})

		r.Route("/absences", func(r chi.Router) {
			r.Post("/", h.CreateAbsence)
			r.Get("/", h.GetAbsences)
			r.Delete("/{id}", h.DeleteAbsence)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateManualAssignment)
			r.Delete("/{id}", h.DeleteAssignment)
		})

		r.Route("/roster", func(r chi.Router) {
			r.Post("/plan", h.PlanRoster)
			r.Route("/{month}", func(r chi.Router) {
				r.Get("/", h.GetRoster)
				r.Get("/export", h.ExportRoster)
			})
		})
	})
}
