package hypothesisservice

import (
	"log/slog"

	httpadapter "compass/contexts/experiment-tracking/hypothesis-service/adapters/http"
	"compass/contexts/experiment-tracking/hypothesis-service/adapters/memory"
	"compass/contexts/experiment-tracking/hypothesis-service/application"
	"compass/contexts/experiment-tracking/hypothesis-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Events ports.EventPublisher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repo,
		Events: deps.Events,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Hypotheses: service,
			Logger:     deps.Logger,
		},
	}
}

func NewInMemoryModule(events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:   store,
		Events: events,
		Clock:  store,
		IDGen:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
