package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	commentservice "compass/contexts/decision-workflow/comment-service"
	commentpostgres "compass/contexts/decision-workflow/comment-service/adapters/postgres"
	decisionservice "compass/contexts/decision-workflow/decision-service"
	decisionpostgres "compass/contexts/decision-workflow/decision-service/adapters/postgres"
	voteservice "compass/contexts/decision-workflow/vote-service"
	votepostgres "compass/contexts/decision-workflow/vote-service/adapters/postgres"
	hypothesisservice "compass/contexts/experiment-tracking/hypothesis-service"
	hypothesispostgres "compass/contexts/experiment-tracking/hypothesis-service/adapters/postgres"
	stakeholderservice "compass/contexts/people-ops/stakeholder-service"
	stakeholderpostgres "compass/contexts/people-ops/stakeholder-service/adapters/postgres"
	"compass/internal/platform/config"
	"compass/internal/platform/db"
	"compass/internal/platform/httpserver"
	"compass/internal/platform/messaging"
)

// Package bootstrap is the composition root. Construction and wiring live
// here so module code stays free of runtime concerns.

// SystemClock reads wall time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues random v4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(context.Context) (string, error) { return uuid.NewString(), nil }

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

// BuildAPI loads config and assembles the API process. With POSTGRES_DSN
// set, every module runs on the shared database; otherwise the in-memory
// adapters back the same HTTP surface for local runs and demos.
func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var bus *messaging.Bus
	if cfg.EnableResolutionEvents {
		bus = messaging.NewBus(logger)
		for _, topic := range cfg.EventTopics {
			drainTopic(bus, topic, logger)
		}
	}

	var (
		decisions    decisionservice.Module
		hypotheses   hypothesisservice.Module
		stakeholders stakeholderservice.Module
		votes        voteservice.Module
		comments     commentservice.Module
		pg           *db.Postgres
	)

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		clock := SystemClock{}
		idGen := UUIDGenerator{}

		decisionRepo := decisionpostgres.NewRepository(pg.DB, logger)
		decisions = decisionservice.NewModule(decisionservice.Dependencies{
			UoW:     decisionRepo,
			Reads:   decisionRepo,
			Persons: decisionRepo,
			Events:  bus,
			Clock:   clock,
			IDGen:   idGen,
			Logger:  logger,
		})
		hypotheses = hypothesisservice.NewModule(hypothesisservice.Dependencies{
			Repo:   hypothesispostgres.NewRepository(pg.DB, logger),
			Events: bus,
			Clock:  clock,
			IDGen:  idGen,
			Logger: logger,
		})
		stakeholders = stakeholderservice.NewModule(stakeholderservice.Dependencies{
			Repo:   stakeholderpostgres.NewRepository(pg.DB, logger),
			Clock:  clock,
			Logger: logger,
		})
		voteRepo := votepostgres.NewRepository(pg.DB, logger)
		votes = voteservice.NewModule(voteservice.Dependencies{
			Repo:      voteRepo,
			Decisions: voteRepo,
			Clock:     clock,
			IDGen:     idGen,
			Logger:    logger,
		})
		commentRepo := commentpostgres.NewRepository(pg.DB, logger)
		comments = commentservice.NewModule(commentservice.Dependencies{
			Repo:      commentRepo,
			Decisions: commentRepo,
			Clock:     clock,
			IDGen:     idGen,
			Logger:    logger,
		})
	} else {
		logger.Warn("no postgres dsn configured; using in-memory stores",
			"event", "memory_store_fallback",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		modules := newMemoryModules(bus, logger)
		decisions = modules.Decisions
		hypotheses = modules.Hypotheses
		stakeholders = modules.Stakeholders
		votes = modules.Votes
		comments = modules.Comments
	}

	features := httpserver.Features{
		EscalationQueries:  cfg.EnableEscalationQueries,
		StakeholderBoards:  cfg.EnableStakeholderBoards,
		DecisionDiscussion: cfg.EnableDecisionDiscussion,
	}
	server := httpserver.New(decisions, hypotheses, stakeholders, votes, comments, logger, normalizeAddr(cfg.HTTPPort), features)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// drainTopic logs delivered envelopes so local runs show the best-effort
// notification flow end to end.
func drainTopic(bus *messaging.Bus, topic string, logger *slog.Logger) {
	delivered, _ := bus.Subscribe(topic, 64)
	go func() {
		for event := range delivered {
			logger.Info("event delivered",
				"event", "bus_event_delivered",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"topic", topic,
				"event_type", event.EventType,
				"event_id", event.EventID,
			)
		}
	}()
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
