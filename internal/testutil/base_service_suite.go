package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/kennelworks/kennelworks/internal/config"
	"github.com/kennelworks/kennelworks/internal/domain/animal"
	"github.com/kennelworks/kennelworks/internal/logger"
	"github.com/kennelworks/kennelworks/internal/repository/record"
	"github.com/kennelworks/kennelworks/internal/types"
	"github.com/kennelworks/kennelworks/internal/validator"
)

// BaseServiceTestSuite provides common functionality for all service
// test suites: an in-memory record store honoring the full store
// contract, a fake clock, capture sinks, and a context carrying a test
// actor.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *InMemoryRecordStore
	animalRepo animal.Repository
	clock      *FakeClock
	notifier   *CaptureNotifier
	exporter   *CaptureExporter
	logger     *logger.Logger
	config     *config.Configuration
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelError

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = types.SetActorID(context.Background(), "test-user")
	s.clock = NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	s.store = NewInMemoryRecordStore(s.clock)
	s.animalRepo = record.NewAnimalRepository(s.store, s.logger)
	s.notifier = NewCaptureNotifier()
	s.exporter = NewCaptureExporter()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.store.Clear()
	s.notifier.Clear()
	s.exporter.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStore returns the in-memory record store
func (s *BaseServiceTestSuite) GetStore() *InMemoryRecordStore {
	return s.store
}

// GetAnimalRepo returns the animal repository over the test store
func (s *BaseServiceTestSuite) GetAnimalRepo() animal.Repository {
	return s.animalRepo
}

// SetAnimalRepo swaps the repository, used to inject failing stores
func (s *BaseServiceTestSuite) SetAnimalRepo(repo animal.Repository) {
	s.animalRepo = repo
}

// GetClock returns the fake clock
func (s *BaseServiceTestSuite) GetClock() *FakeClock {
	return s.clock
}

// GetNotifier returns the capture notifier
func (s *BaseServiceTestSuite) GetNotifier() *CaptureNotifier {
	return s.notifier
}

// GetExporter returns the capture exporter
func (s *BaseServiceTestSuite) GetExporter() *CaptureExporter {
	return s.exporter
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}
