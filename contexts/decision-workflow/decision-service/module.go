package decisionservice

import (
	"log/slog"

	httpadapter "compass/contexts/decision-workflow/decision-service/adapters/http"
	"compass/contexts/decision-workflow/decision-service/adapters/memory"
	"compass/contexts/decision-workflow/decision-service/application/commands"
	"compass/contexts/decision-workflow/decision-service/application/queries"
	"compass/contexts/decision-workflow/decision-service/domain/entities"
	"compass/contexts/decision-workflow/decision-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	UoW     ports.UnitOfWork
	Reads   ports.ReadRepository
	Persons ports.PersonDirectory
	Events  ports.EventPublisher
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func NewModule(deps Dependencies) Module {
	decisionUseCase := commands.DecisionUseCase{
		UoW:     deps.UoW,
		Persons: deps.Persons,
		Events:  deps.Events,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	queueUseCase := queries.QueueUseCase{
		Repo:  deps.Reads,
		Clock: deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Decisions: decisionUseCase,
			Queue:     queueUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Decision, events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		UoW:     store,
		Reads:   store,
		Persons: store,
		Events:  events,
		Clock:   store,
		IDGen:   store,
		Logger:  logger,
	})
	module.Store = store
	return module
}
