package service

import (
	"github.com/kennelworks/kennelworks/internal/clock"
	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/export"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/notify"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  clock.Clock

	// Repositories
	AnimalRepo animal.Repository

	// Sinks
	Notifier notify.Notifier
	Exporter export.Exporter
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	clk clock.Clock,
	animalRepo animal.Repository,
	notifier notify.Notifier,
	exporter export.Exporter,
) ServiceParams {
	return ServiceParams{
		Logger:     logger,
		Config:     config,
		Clock:      clk,
		AnimalRepo: animalRepo,
		Notifier:   notifier,
		Exporter:   exporter,
	}
}
