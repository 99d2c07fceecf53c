package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	chimw "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/jrramp/arecheoedu/internal/errs"
	"github.com/jrramp/arecheoedu/internal/middleware"
)

const metricsPath = "/internal/metrics"

// Handlers groups everything NewRouter mounts.
type Handlers struct {
	Presentations *PresentationHandler
	Quizzes       *QuizHandler
	Health        *HealthHandler
	Import        *ImportHandler
	Changes       *ChangesHandler
	Metrics       http.Handler
}

type RouteOptions struct {
	MaxBodyBytes   int64
	MaxUploadBytes int64
	// AdminToken guards the mutating routes when non-empty.
	AdminToken     string
	AllowedOrigins []string
}

// NewRouter mounts every route on a gorilla/mux router.
func NewRouter(h Handlers, opts RouteOptions, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()

	router.Use(
		chimw.RequestID,
		chimw.Recoverer,
		middleware.RequestLog(log.With().Str("subsystem", "http").Logger(), metricsPath),
	)

	router.NotFoundHandler = jsonError(log, errs.Str("not found"), http.StatusNotFound)
	router.MethodNotAllowedHandler = jsonError(log, errs.Str("method not allowed"), http.StatusMethodNotAllowed)

	adminToken := middleware.AdminToken(opts.AdminToken, log)
	guarded := func(fn http.HandlerFunc, limit int64) http.Handler {
		return adminToken(middleware.BodyLimit(limit)(fn))
	}

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/presentations", h.Presentations.ListPresentations).Methods(http.MethodGet)
	api.Handle("/presentations", guarded(h.Presentations.AddPresentation, opts.MaxBodyBytes)).Methods(http.MethodPost)
	api.Handle("/presentations", guarded(h.Presentations.ReplacePresentations, opts.MaxBodyBytes)).Methods(http.MethodPut)
	api.Handle("/presentations/import", guarded(h.Import.ImportPresentation, opts.MaxUploadBytes)).Methods(http.MethodPost)
	api.Handle("/presentations/{id}", guarded(h.Presentations.DeletePresentation, opts.MaxBodyBytes)).Methods(http.MethodDelete)

	api.HandleFunc("/quizzes", h.Quizzes.ListQuizzes).Methods(http.MethodGet)
	api.Handle("/quizzes", guarded(h.Quizzes.UpsertQuizLinks, opts.MaxBodyBytes)).Methods(http.MethodPost)
	api.Handle("/quizzes", guarded(h.Quizzes.ReplaceQuizzes, opts.MaxBodyBytes)).Methods(http.MethodPut)

	api.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	api.HandleFunc("/changes", h.Changes.Subscribe).Methods(http.MethodGet)

	if h.Metrics != nil {
		router.Handle(metricsPath, h.Metrics).Methods(http.MethodGet)
	}

	return router
}

// SetupRoutes returns the router wrapped in the CORS handler, which also
// answers preflight requests for every path.
func SetupRoutes(h Handlers, opts RouteOptions, log zerolog.Logger) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})

	return c(NewRouter(h, opts, log))
}

func jsonError(log zerolog.Logger, err error, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, log, status, map[string]string{"error": err.Error()})
	})
}

// PrintRoutes writes a METHOD/ROUTE table of every route on r.
func PrintRoutes(r *mux.Router, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "Method\tRoute")

	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\n", strings.Join(methods, ","), tpl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("walking routes: %w", err)
	}

	return w.Flush()
}
