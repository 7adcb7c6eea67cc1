package service

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resume-redactor/internal/domain"
	apperrors "resume-redactor/pkg/errors"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// GeminiConfig is everything needed to reach Vertex AI. CredentialsFile is a
// service-account JSON key; when empty, application default credentials apply.
type GeminiConfig struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
	Temperature     float32
}

// GeminiGenerator implements domain.TextGenerator on Vertex AI Gemini.
type GeminiGenerator struct {
	client *genai.Client
	cfg    GeminiConfig
	logger domain.Logger
}

// NewGeminiGenerator creates a Vertex AI client from cfg.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger domain.Logger) (*GeminiGenerator, error) {
	if cfg.ProjectID == "" || cfg.Location == "" {
		return nil, fmt.Errorf("%w: project and location are required", domain.ErrGeneratorNotConfigured)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	opts, err := credentialOptions(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex ai client: %w", err)
	}

	logger.Info("Gemini generator ready", "project", cfg.ProjectID, "location", cfg.Location, "model", cfg.Model)
	return &GeminiGenerator{client: client, cfg: cfg, logger: logger}, nil
}

func credentialOptions(ctx context.Context, credentialsFile string) ([]option.ClientOption, error) {
	if credentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return []option.ClientOption{option.WithCredentials(creds)}, nil
}

// Generate sends a single prompt and joins the text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.cfg.Model)
	if g.cfg.Temperature > 0 {
		model.SetTemperature(g.cfg.Temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", apperrors.NewServiceError("gemini call failed", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewServiceError("gemini call failed", domain.ErrEmptyGeneration)
	}

	if resp.UsageMetadata != nil {
		g.logger.Debug("Gemini usage",
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"candidate_tokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

// UnavailableGenerator stands in when no generator is configured. Every call
// fails, so redaction keeps working while summaries report the problem.
type UnavailableGenerator struct {
	Reason error
}

// Generate implements domain.TextGenerator.
func (u UnavailableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	reason := u.Reason
	if reason == nil {
		reason = domain.ErrGeneratorNotConfigured
	}
	return "", apperrors.NewServiceError("summary generation unavailable", reason)
}
