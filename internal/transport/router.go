package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niklvrr/ReviewerRotation/api"
	"github.com/niklvrr/ReviewerRotation/internal/transport/handler"
	transportMiddleware "github.com/niklvrr/ReviewerRotation/internal/transport/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Team             *handler.TeamHandler
	Reviewer         *handler.ReviewerHandler
	Assignment       *handler.AssignmentHandler
	Tag              *handler.TagHandler
	Snapshot         *handler.SnapshotHandler
	ActiveAssignment *handler.ActiveAssignmentHandler
	Health           *handler.HealthHandler
}

func NewRouter(h Handlers, requestTimeout time.Duration, log *zap.Logger) *chi.Mux {
	router := chi.NewRouter()

	// Recovery должен быть первым для обработки паник во всех middleware
	router.Use(transportMiddleware.Recovery(log))

	// RequestID для трейсинга запросов
	router.Use(middleware.RequestID)

	// Logging для структурированного логирования всех запросов
	router.Use(transportMiddleware.Logging(log))

	// Timeout для контроля времени выполнения запросов
	router.Use(transportMiddleware.Timeout(requestTimeout, log))

	// Metrics для сбора метрик по маршрутам
	router.Use(transportMiddleware.Metrics)

	// Автор действия из токена, если он не передан в теле
	router.Use(transportMiddleware.Attribution(log))

	// Эндпоинт для Prometheus метрик
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/health", h.Health.HealthCheck)

	// Документация API
	router.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(api.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/openapi.yaml"),
	))

	router.Post("/teams", h.Team.CreateTeam)

	router.Route("/teams/{teamId}", func(r chi.Router) {
		r.Get("/", h.Team.GetTeam)

		r.Route("/reviewers", func(r chi.Router) {
			r.Get("/", h.Reviewer.ListReviewers)
			r.Post("/", h.Reviewer.AddReviewer)
			r.Post("/import", h.Reviewer.ImportReviewers)
			r.Post("/reset", h.Reviewer.ResetAll)

			r.Route("/{reviewerId}", func(r chi.Router) {
				r.Get("/", h.Reviewer.GetReviewer)
				r.Patch("/", h.Reviewer.UpdateReviewer)
				r.Delete("/", h.Reviewer.RemoveReviewer)
				r.Post("/absence", h.Reviewer.ToggleAbsence)
				r.Put("/count", h.Reviewer.UpdateAssignmentCount)
			})
		})

		r.Get("/next", h.Assignment.Next)
		r.Get("/feed", h.Assignment.Feed)

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", h.Assignment.History)
			r.Post("/", h.Assignment.Assign)
			r.Post("/next", h.Assignment.AssignNext)
			r.Post("/tag", h.Assignment.AssignByTag)
			r.Post("/skip", h.Assignment.Skip)
			r.Post("/undo", h.Assignment.Undo)
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", h.Snapshot.ListSnapshots)
			r.Post("/", h.Snapshot.CaptureSnapshot)
			r.Post("/{snapshotId}/restore", h.Snapshot.RestoreSnapshot)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.Tag.ListTags)
			r.Post("/", h.Tag.CreateTag)
			r.Get("/{tagId}", h.Tag.GetTag)
			r.Patch("/{tagId}", h.Tag.UpdateTag)
			r.Delete("/{tagId}", h.Tag.DeleteTag)
		})

		r.Route("/active-assignments", func(r chi.Router) {
			r.Get("/", h.ActiveAssignment.ListActive)
			r.Post("/", h.ActiveAssignment.CreateActive)
			r.Post("/{id}/complete", h.ActiveAssignment.CompleteActive)
		})
	})

	return router
}
