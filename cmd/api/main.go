package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub.org/internal/audit"
	"taskhub.org/internal/authz"
	"taskhub.org/internal/httpapi"
	"taskhub.org/internal/obs"
	"taskhub.org/internal/store/pg"
	"taskhub.org/internal/tracker"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

type backend interface {
	tracker.UserStore
	tracker.ProjectStore
	tracker.TaskStore
	authz.ProjectLookup
	audit.Store
}

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		store backend
		probe httpapi.ReadyProbe
	)
	if dsn := os.Getenv("TASKHUB_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			obs.Log("fatal", "open database", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		// Development fallback; all state is lost on restart.
		obs.Log("warn", "TASKHUB_PG_DSN not set, using in-memory store", nil)
		store = tracker.NewInMemory()
	}

	eval := authz.NewEvaluator(authz.DefaultPolicy(), authz.NewResolver(store))
	recorder := audit.NewRecorder(store)

	users, err := tracker.NewUserService(store, eval, recorder)
	if err != nil {
		fatal("user service", err)
	}
	projects, err := tracker.NewProjectService(store, eval, recorder)
	if err != nil {
		fatal("project service", err)
	}
	tasks, err := tracker.NewTaskService(store, store, eval, recorder)
	if err != nil {
		fatal("task service", err)
	}
	audits, err := tracker.NewAuditService(store, eval)
	if err != nil {
		fatal("audit service", err)
	}

	api := httpapi.New(httpapi.Config{
		Users:    users,
		Projects: projects,
		Tasks:    tasks,
		Audits:   audits,
		Ready:    probe,
		Version:  version,
	})

	addr := os.Getenv("TASKHUB_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	obs.Log("info", "starting taskhub-api", map[string]any{"version": version, "addr": addr})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("listen", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	obs.Log("info", "shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	// Drain queued audit entries before the store goes away.
	recorder.Close()
	obs.Log("info", "stopped", nil)
}

func fatal(msg string, err error) {
	obs.Log("fatal", msg, map[string]any{"error": err.Error()})
	os.Exit(1)
}
