package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"taskhub.org/internal/obs"
	"taskhub.org/internal/tracker"
)

// ReadyProbe reports whether the API's dependencies can serve traffic.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the tracker services.
type API struct {
	mux        *http.ServeMux
	users      *tracker.UserService
	projects   *tracker.ProjectService
	tasks      *tracker.TaskService
	audits     *tracker.AuditService
	readyProbe ReadyProbe
	version    string
	rateBurst  int
	ratePerSec int
}

// Config carries the service dependencies for New.
type Config struct {
	Users    *tracker.UserService
	Projects *tracker.ProjectService
	Tasks    *tracker.TaskService
	Audits   *tracker.AuditService
	Ready    ReadyProbe
	Version  string
}

func New(cfg Config) *API {
	a := &API{
		mux:        http.NewServeMux(),
		users:      cfg.Users,
		projects:   cfg.Projects,
		tasks:      cfg.Tasks,
		audits:     cfg.Audits,
		readyProbe: cfg.Ready,
		version:    cfg.Version,
		rateBurst:  50,
		ratePerSec: 25,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth/token", a.handleAuthToken)

	a.mux.HandleFunc("/v1/users", a.handleUsersCollection)
	a.mux.HandleFunc("/v1/users/", a.handleUserResource)
	a.mux.HandleFunc("/v1/projects", a.handleProjectsCollection)
	a.mux.HandleFunc("/v1/projects/", a.handleProjectResource)
	a.mux.HandleFunc("/v1/tasks", a.handleTasksCollection)
	a.mux.HandleFunc("/v1/tasks/", a.handleTaskResource)
	a.mux.HandleFunc("/v1/audit", a.handleAuditCollection)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler chain used by the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = Logging(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
