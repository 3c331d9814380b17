package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/quadrant/pkg/usecase"
	"github.com/secmon-lab/quadrant/pkg/utils/logging"
	"github.com/secmon-lab/quadrant/pkg/utils/safe"
)

type Server struct {
	router             *chi.Mux
	uc                 *usecase.UseCases
	authUC             AuthUseCase
	slackSigningSecret string
	clock              func() time.Time
}

type Options func(*Server)

func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithSlackSigningSecret sets the secret inbound Slack events are verified with
func WithSlackSigningSecret(secret string) Options {
	return func(s *Server) {
		s.slackSigningSecret = secret
	}
}

func WithClock(clock func() time.Time) Options {
	return func(s *Server) {
		s.clock = clock
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	// Slack Events API. No user auth; every request must carry a valid Slack signature.
	r.Route("/webhooks/slack", func(r chi.Router) {
		r.Use(SlackSignatureMiddleware(s.slackSigningSecret, s.clock))
		r.Post("/events/{webhook_id}", slackEventsHandler(uc.Reaction))
	})

	if s.authUC != nil {
		r.Route("/api", func(r chi.Router) {
			r.Use(authMiddleware(s.authUC))

			r.Get("/me", meHandler())
			r.Put("/me/slack-user", putSlackUserHandler(uc.User))

			r.Route("/slack/connections", func(r chi.Router) {
				r.Get("/", listConnectionsHandler(uc.Connection))
				r.Post("/", connectHandler(uc.Connection))
				r.Delete("/{connection_id}", disconnectHandler(uc.Connection))
			})

			r.Route("/slack/webhooks", func(r chi.Router) {
				r.Get("/", listWebhooksHandler(uc.Webhook))
				r.Post("/", createWebhookHandler(uc.Webhook))
				r.Delete("/{webhook_id}", deactivateWebhookHandler(uc.Webhook))
			})

			r.Get("/settings/emoji", getEmojiSettingsHandler(uc.EmojiSettings))
			r.Put("/settings/emoji", putEmojiSettingsHandler(uc.EmojiSettings))

			r.Route("/todos", func(r chi.Router) {
				r.Get("/", listTodosHandler(uc.Todo, s.clock))
				r.Post("/", createTodoHandler(uc.Todo, s.clock))
				r.Post("/compare", compareTodosHandler(uc.Todo, s.clock))
				r.Get("/{todo_id}", getTodoHandler(uc.Todo, s.clock))
				r.Patch("/{todo_id}", updateTodoHandler(uc.Todo, s.clock))
				r.Delete("/{todo_id}", deleteTodoHandler(uc.Todo))
				r.Post("/{todo_id}/complete", completeTodoHandler(uc.Todo, s.clock))
				r.Post("/{todo_id}/reopen", reopenTodoHandler(uc.Todo, s.clock))
			})

			r.Get("/reports/completions", completionReportHandler(uc.Todo, s.clock))
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	safe.WriteJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
