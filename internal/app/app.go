package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talkincode/prodcatalog/config"
	"github.com/talkincode/prodcatalog/internal/catalog"
	"github.com/talkincode/prodcatalog/internal/extract"
)

type Application struct {
	appConfig *config.AppConfig
	store     *catalog.Store
	extractor Extractor
}

// Ensure Application implements all interfaces
var (
	_ ConfigProvider    = (*Application)(nil)
	_ CatalogProvider   = (*Application)(nil)
	_ ExtractorProvider = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
	_ Extractor         = (*extract.Pipeline)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Catalog() *catalog.Store {
	return a.store
}

func (a *Application) Extractor() Extractor {
	return a.extractor
}

// OverrideExtractor replaces the extraction pipeline (used in tests).
func (a *Application) OverrideExtractor(e Extractor) {
	a.extractor = e
}

// Init sets up logging, seeds the catalog and builds the extraction
// pipeline. It does not validate cfg; callers that need a working completion
// service call cfg.Validate first.
func (a *Application) Init(cfg *config.AppConfig) error {
	a.appConfig = cfg

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	InitLogger(cfg)

	a.store, err = catalog.NewStore(SeedProducts()...)
	if err != nil {
		return errors.Wrap(err, "seeding catalog")
	}
	if err := a.store.Subscribe(func(e catalog.AppendedEvent) {
		zap.L().Info("product appended to catalog",
			zap.String("id", e.ID.String()),
			zap.String("name", e.Name),
			zap.Int("total", e.Total))
	}); err != nil {
		return errors.Wrap(err, "subscribing to catalog events")
	}
	zap.S().Infof("catalog seeded with %d products", a.store.Len())

	a.extractor = NewPipeline(cfg)
	return nil
}

// NewPipeline builds the extraction pipeline described by cfg.
func NewPipeline(cfg *config.AppConfig) *extract.Pipeline {
	client := extract.NewCompletionClient(cfg.OpenAI.APIKey,
		extract.WithBaseURL(cfg.OpenAI.BaseURL),
		extract.WithModel(cfg.OpenAI.Model),
		extract.WithTemperature(cfg.OpenAI.Temperature),
	)
	pipeline := extract.NewPipeline(client, &extract.Normalizer{MaxBytes: cfg.Web.MaxUploadBytes})
	if cfg.Extract.FetchURL {
		pipeline.Fetcher = extract.NewPageFetcher(cfg.Extract.FetchMaxBytes, 30*time.Second)
	}
	zap.L().Info("extraction pipeline ready",
		zap.String("model", client.Model()),
		zap.Bool("fetch_url", cfg.Extract.FetchURL))
	return pipeline
}

// InitLogger installs the global zap logger described by cfg.Logger.
func InitLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Release flushes the logger.
func (a *Application) Release() {
	_ = zap.L().Sync()
}
