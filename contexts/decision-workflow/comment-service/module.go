package commentservice

import (
	"log/slog"

	httpadapter "compass/contexts/decision-workflow/comment-service/adapters/http"
	"compass/contexts/decision-workflow/comment-service/adapters/memory"
	"compass/contexts/decision-workflow/comment-service/application"
	"compass/contexts/decision-workflow/comment-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo      ports.Repository
	Decisions ports.DecisionDirectory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:      deps.Repo,
		Decisions: deps.Decisions,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Comments: service,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:      store,
		Decisions: store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
