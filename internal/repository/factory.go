package repository

import (
	"github.com/kennelworks/kennelworks/internal/clock"
	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	ierr "github.com/kennelworks/kennelworks/internal/errors"
	"github.com/kennelworks/kennelworks/internal/httpclient"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/recordstore"
	"github.com/kennelworks/kennelworks/internal/repository/record"
)

// NewRecordStore selects the record store backend from configuration.
func NewRecordStore(
	cfg *config.Configuration,
	clk clock.Clock,
	client httpclient.Client,
	log *logger.Logger,
) (recordstore.Store, error) {
	switch cfg.RecordStore.Driver {
	case "http":
		return recordstore.NewHTTPStore(cfg.RecordStore, client, log), nil
	case "sqlite":
		return recordstore.NewSqliteStore(cfg.RecordStore.Path, clk, log)
	default:
		return nil, ierr.NewErrorf("unknown record store driver: %s", cfg.RecordStore.Driver).
			WithHint("Supported record store drivers are http and sqlite").
			Mark(ierr.ErrValidation)
	}
}

func NewAnimalRepository(store recordstore.Store, log *logger.Logger) animal.Repository {
	return record.NewAnimalRepository(store, log)
}
