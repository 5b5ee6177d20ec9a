package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName            string
	MigrationsDir     string
	Port              string
	Slack             SlackConfig
	Turso             TursoConfig
	ProjectID         string
	BroadcastInterval time.Duration
}
type SlackConfig struct {
	Token     string
	ChannelID string
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
