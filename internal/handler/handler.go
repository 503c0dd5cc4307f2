package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/sprint-planner/backend/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/team-members", func(r chi.Router) {
		r.Post("/", h.CreateTeamMember)
		r.Get("/", h.GetAllTeamMembers)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.teamMember)
			r.Get("/", h.GetTeamMember)
			r.Patch("/", h.UpdateTeamMember)
			r.Delete("/", h.DeleteTeamMember)
			r.Route("/personal-holidays", func(r chi.Router) {
				r.Post("/", h.AddPersonalHoliday)
				r.Delete("/{holidayID}", h.DeletePersonalHoliday)
			})
		})
	})

	h.Mux.Route("/public-holidays", func(r chi.Router) {
		r.Post("/", h.CreatePublicHoliday)
		r.Get("/", h.GetAllPublicHolidays)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.publicHoliday)
			r.Get("/", h.GetPublicHoliday)
			r.Patch("/", h.UpdatePublicHoliday)
			r.Delete("/", h.DeletePublicHoliday)
		})
	})

	h.Mux.Route("/sprints", func(r chi.Router) {
		r.Post("/", h.CreateSprint)
		r.Get("/", h.GetAllSprints)
		r.Post("/generate", h.GenerateSprints)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.sprint)
			r.Get("/", h.GetSprint)
			r.Patch("/", h.UpdateSprint)
			r.Delete("/", h.DeleteSprint)
			r.Get("/capacity", h.GetSprintCapacity)
		})
	})

	h.Mux.Route("/work-items", func(r chi.Router) {
		r.Post("/", h.CreateWorkItem)
		r.Get("/", h.GetAllWorkItems)
		r.Get("/blocked", h.GetBlockedWorkItems)
		r.Post("/auto-assign", h.AutoAssignWorkItems)
		r.Delete("/assignments", h.ClearAssignments)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.workItem)
			r.Get("/", h.GetWorkItem)
			r.Patch("/", h.UpdateWorkItem)
			r.Delete("/", h.DeleteWorkItem)
			r.Get("/children", h.GetWorkItemChildren)
			r.Get("/dependency-chain", h.GetWorkItemDependencyChain)
			r.Post("/assign", h.AssignWorkItem)
		})
	})
}
