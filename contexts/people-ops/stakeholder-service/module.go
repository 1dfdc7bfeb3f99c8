package stakeholderservice

import (
	"log/slog"

	httpadapter "compass/contexts/people-ops/stakeholder-service/adapters/http"
	"compass/contexts/people-ops/stakeholder-service/adapters/memory"
	"compass/contexts/people-ops/stakeholder-service/application"
	"compass/contexts/people-ops/stakeholder-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repo,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Stakeholders: service,
			Logger:       deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:   store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
