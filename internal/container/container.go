package container

import (
	"net/http"

	"github.com/CliffortMC08/pearlite-analyser/internal/config"
	"github.com/CliffortMC08/pearlite-analyser/internal/logger"
	"github.com/CliffortMC08/pearlite-analyser/internal/observer"
	"github.com/CliffortMC08/pearlite-analyser/internal/report"
	"github.com/CliffortMC08/pearlite-analyser/internal/repository"
	"github.com/CliffortMC08/pearlite-analyser/internal/service"
	"github.com/CliffortMC08/pearlite-analyser/internal/storage"
	"github.com/CliffortMC08/pearlite-analyser/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageFetcher    storage.ImageFetcher
	blobStorage     storage.BlobStorage
	micrographRepo  repository.MicrographRepository
	analysisService service.PhaseAnalysisService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	// Build dependency graph
	imageFetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)

	var blobStorage storage.BlobStorage
	if cfg.AzureEnabled() {
		bs, err := storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey)
		if err != nil {
			return nil, err
		}
		blobStorage = bs
	}

	micrographRepo := repository.NewMicrographRepository(imageFetcher, blobStorage)

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))

	analysisService := service.NewPhaseAnalysisService(cfg, micrographRepo, report.NewGenerator(), events)
	handler := transport.NewHandler(analysisService, cfg)

	return &Container{
		config:          cfg,
		imageFetcher:    imageFetcher,
		blobStorage:     blobStorage,
		micrographRepo:  micrographRepo,
		analysisService: analysisService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
