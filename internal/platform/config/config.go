package config

import (
	"os"
	"strings"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	EventTopics []string

	EnableEscalationQueries  bool
	EnableResolutionEvents   bool
	EnableStakeholderBoards  bool
	EnableDecisionDiscussion bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "compass"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var topics []string
	for _, value := range strings.Split(os.Getenv("EVENT_TOPICS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			topics = append(topics, value)
		}
	}
	if len(topics) == 0 {
		topics = []string{"decision-workflow", "experiment-tracking"}
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		EventTopics: topics,

		EnableEscalationQueries:  envBool("ENABLE_ESCALATION_QUERIES", true),
		EnableResolutionEvents:   envBool("ENABLE_RESOLUTION_EVENTS", true),
		EnableStakeholderBoards:  envBool("ENABLE_STAKEHOLDER_BOARDS", true),
		EnableDecisionDiscussion: envBool("ENABLE_DECISION_DISCUSSION", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
