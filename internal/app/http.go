package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/todone/internal/config"
	"github.com/adanyl0v/todone/internal/delivery/http/v1"
	"github.com/adanyl0v/todone/internal/services"
	"github.com/adanyl0v/todone/internal/validation"
)

// ListenAndServeHTTP serves the API until SIGINT or SIGTERM and returns the
// process exit code.
func (a *App) ListenAndServeHTTP() int {
	if a.cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := a.cfg.HTTP
	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: a.newRouter(),
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		httpCfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				a.logger.Info().Msg("shutting down http server")
				return server.Shutdown(ctx)
			},
		},
	)

	select {
	case <-serveErr:
		return 1
	case exitCode := <-wait:
		a.logger.Info().
			Int("exit_code", exitCode).
			Msg("shut down http server")
		return exitCode
	}
}

func (a *App) newRouter() *gin.Engine {
	taskService := services.NewTaskService(
		a.logger.With().Str("service", "tasks").Logger(),
		a.repo,
		validation.MustNew(),
	)
	handler := v1.New(
		a.logger.With().Str("component", "http").Logger(),
		taskService,
		v1.Options{
			AllowedOrigins: a.cfg.HTTP.CORSAllowedOrigins,
			Diagnostics:    a.cfg.DiagnosticsEnabled(),
		},
	)
	return v1.NewRouter(handler)
}
