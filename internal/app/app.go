package app

import (
	"github.com/rs/zerolog"

	"github.com/adanyl0v/todone/internal/config"
	"github.com/adanyl0v/todone/internal/repository"
)

// App owns the process-wide dependencies. The Must* methods are meant to be
// called once, in order, from main.
type App struct {
	logger zerolog.Logger
	cfg    *config.Config
	repo   repository.TaskRepository
}

func New() *App {
	return &App{
		logger: InitDefaultLogger(),
	}
}

func (a *App) Logger() zerolog.Logger {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.cfg
}
