package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/financial-analyst/internal"
	"github.com/frahmantamala/financial-analyst/internal/analysis"
	"github.com/frahmantamala/financial-analyst/internal/auth"
	authStore "github.com/frahmantamala/financial-analyst/internal/auth/store"
	"github.com/frahmantamala/financial-analyst/internal/company"
	companyStore "github.com/frahmantamala/financial-analyst/internal/company/store"
	"github.com/frahmantamala/financial-analyst/internal/core/events"
	"github.com/frahmantamala/financial-analyst/internal/database"
	"github.com/frahmantamala/financial-analyst/internal/extraction"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	financialStore "github.com/frahmantamala/financial-analyst/internal/financial/store"
	"github.com/frahmantamala/financial-analyst/internal/llm"
	"github.com/frahmantamala/financial-analyst/pkg/logger"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config *internal.Config
	Gorm   *gorm.DB
	DB     *sqlx.DB
	Logger *slog.Logger
	Bus    *events.EventBus

	Auth      *auth.Service
	Companies *company.Service
	Financial *financial.Service

	// set only when the model is required
	Model    llm.Model
	Pipeline *extraction.Pipeline
	Analysis *analysis.Service
}

type depOptions struct {
	// NeedModel makes a missing API key fatal and builds the model clients.
	NeedModel bool
}

func initializeDependencies(ctx context.Context, cfg *internal.Config, opts depOptions) (*Dependencies, error) {
	lg := logger.L()

	if opts.NeedModel {
		if err := cfg.LLM.RequireAPIKey(); err != nil {
			return nil, err
		}
	}

	gdb, err := database.Open(cfg.Database, database.Options{MustExist: true})
	if err != nil {
		return nil, err
	}

	sx, err := database.SQLX(gdb, cfg.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database: %w", err)
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.EventTypeDocumentIngested, auditIngestion(lg))
	bus.Subscribe(events.EventTypeDocumentIngestionFailed, auditIngestion(lg))

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)

	deps := &Dependencies{
		Config: cfg,
		Gorm:   gdb,
		DB:     sx,
		Logger: lg,
		Bus:    bus,
	}
	deps.Auth = auth.NewService(authStore.NewUserRepository(gdb), tokens, cfg.Security.BCryptCost, lg)
	deps.Companies = company.NewService(companyStore.NewCompanyRepository(gdb, sx), lg)
	deps.Financial = financial.NewService(financialStore.NewFinancialRepository(gdb), deps.Companies, lg)

	if opts.NeedModel {
		model, err := llm.NewGeminiModel(ctx, cfg.LLM.APIKey)
		if err != nil {
			deps.Close()
			return nil, err
		}
		lg.Info("language model ready", "model", model.Name())
		deps.Model = model
		deps.Pipeline = extraction.NewPipeline(
			extraction.NewPDFReader(), model, deps.Financial, lg,
			extraction.WithPublisher(bus),
			extraction.WithMaxChars(cfg.LLM.PromptLimit()),
		)
		deps.Analysis = analysis.NewService(model, deps.Financial, lg)
	}

	return deps, nil
}

func (d *Dependencies) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
}

func auditIngestion(lg *slog.Logger) events.Handler {
	return func(_ context.Context, e events.Event) error {
		lg.Info("ingestion audit",
			"event_type", e.EventType(),
			"event_id", e.EventID(),
			"occurred_at", e.OccurredAt(),
			"payload", e.Payload())
		return nil
	}
}
