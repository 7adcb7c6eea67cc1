package config

import (
	"context"
	"fmt"

	"resume-redactor/internal/domain"
	"resume-redactor/internal/infra/supabase"
	"resume-redactor/internal/repository"
	"resume-redactor/internal/service"
	"resume-redactor/pkg/logger"
)

const redactedObjectPrefix = "redacted"

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	Detector       *service.Detector
	Storage        domain.StorageService
	Generator      domain.TextGenerator
	ResumeService  domain.ResumeService
	TokenValidator domain.TokenValidator

	closers []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	return NewContainerWithConfig(ctx, NewConfig())
}

// NewContainerWithConfig wires every component from cfg. Optional
// collaborators (archival storage, generator, auth) are left out when their
// settings are missing.
func NewContainerWithConfig(ctx context.Context, cfg domain.Config) (*Container, error) {
	return NewContainerWithLogger(ctx, cfg, logger.NewLogger(cfg.GetLogLevel()))
}

// NewContainerWithLogger is NewContainerWithConfig with a caller-supplied logger.
func NewContainerWithLogger(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: appLogger}

	detector, err := newDetector(cfg, appLogger)
	if err != nil {
		return nil, err
	}
	c.Detector = detector

	if c.Storage, err = newStorage(cfg, appLogger); err != nil {
		return nil, err
	}

	generator, err := c.newGenerator(ctx)
	if err != nil {
		return nil, err
	}
	c.Generator = generator

	if secret := cfg.GetJWTSecret(); secret != "" {
		c.TokenValidator = service.NewAuthService(secret, appLogger)
	} else {
		appLogger.Warn("JWT_SECRET not set; API authentication disabled")
	}

	extractor := service.NewFitzTextExtractor(appLogger)
	redactor := service.NewPDFRedactor(service.NewGlyphGeometry(appLogger), appLogger)
	redaction := service.NewRedactionService(extractor, detector, redactor, c.Storage, appLogger)
	summary := service.NewSummaryService(generator, detector, appLogger, service.SummaryOptions{
		Timeout:      cfg.GetSummaryTimeout(),
		ExcerptLimit: cfg.GetExcerptLimit(),
	})
	c.ResumeService = service.NewResumeService(redaction, extractor, summary, appLogger)

	return c, nil
}

func newDetector(cfg domain.Config, appLogger domain.Logger) (*service.Detector, error) {
	matchers := service.DefaultMatchers()
	if path := cfg.GetDetectorRulesFile(); path != "" {
		extra, err := service.LoadDetectorRules(path)
		if err != nil {
			return nil, err
		}
		appLogger.Info("Loaded detector rules", "file", path, "rules", len(extra))
		matchers = append(matchers, extra...)
	}
	return service.NewDetector(matchers...), nil
}

func newStorage(cfg domain.Config, appLogger domain.Logger) (domain.StorageService, error) {
	bucket := cfg.GetRedactedBucket()
	if bucket == "" || cfg.GetSupabaseURL() == "" || cfg.GetSupabaseKey() == "" {
		appLogger.Debug("Redacted output archival disabled")
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), appLogger)
	if err != nil {
		return nil, err
	}
	return repository.NewSupabaseStorage(client.Storage(), bucket, redactedObjectPrefix, appLogger), nil
}

func (c *Container) newGenerator(ctx context.Context) (domain.TextGenerator, error) {
	if c.Config.GetGoogleProject() == "" {
		c.Logger.Warn("GOOGLE_CLOUD_PROJECT not set; summaries unavailable")
		return service.UnavailableGenerator{}, nil
	}
	gemini, err := service.NewGeminiGenerator(ctx, service.GeminiConfig{
		ProjectID:       c.Config.GetGoogleProject(),
		Location:        c.Config.GetGoogleLocation(),
		Model:           c.Config.GetGeminiModel(),
		CredentialsFile: c.Config.GetGoogleCredentialsFile(),
	}, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize summary generator: %w", err)
	}
	c.closers = append(c.closers, gemini.Close)
	return gemini, nil
}

// Close releases external clients.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
