package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/isdelr/fuego-api/internal/api/handlers"
	apimiddleware "github.com/isdelr/fuego-api/internal/api/middleware"
	"github.com/isdelr/fuego-api/internal/auth"
	"github.com/isdelr/fuego-api/internal/services"
	"github.com/isdelr/fuego-api/internal/websocket"
)

// Dependencies are the collaborators the router hands to its handlers.
type Dependencies struct {
	Logger         zerolog.Logger
	Users          services.UserServiceProvider
	Tasks          services.TaskServiceProvider
	Tokens         *auth.TokenCodec
	Resolver       auth.UserResolver
	Hub            *websocket.Hub
	Limiter        *apimiddleware.RateLimiter
	AllowedOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For/X-Real-IP
	// before rate limiting and logging.
	TrustProxyHeaders bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: !allowsAny(deps.AllowedOrigins),
		MaxAge:           300,
	}))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = apimiddleware.NewRateLimiter(0, 0)
	}
	requireUser := auth.JWTMiddleware(deps.Tokens, deps.Resolver)

	userHandler := handlers.NewUserHandler(deps.Users)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)

	r.Get("/", handlers.Status)
	r.Get("/health", handlers.Health)
	r.With(limiter.Handler).Post("/token", userHandler.Token)

	r.Route("/users", func(r chi.Router) {
		r.With(limiter.Handler).Post("/create", userHandler.Register)
		r.Get("/findProfile/{email}", userHandler.FindProfile)
		r.With(requireUser).Get("/find/{id}", userHandler.Find)
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/user", userHandler.GetMe)
		r.Delete("/user", userHandler.DeleteMe)

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", taskHandler.GetAll)
			r.Post("/", taskHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
			})
		})

		if deps.Hub != nil {
			wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
			r.Get("/ws", wsHandler.Serve)
		}
	})

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("request")
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
