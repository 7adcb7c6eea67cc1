package supabase

import (
	"fmt"

	"resume-redactor/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// Client wraps the Supabase project client.
type Client struct {
	client *supabase.Client
	logger domain.Logger
}

// NewClient connects to a Supabase project with the given API key.
func NewClient(url, key string, logger domain.Logger) (*Client, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	logger.Info("Supabase client initialized successfully", "url", url)
	return &Client{client: client, logger: logger}, nil
}

// Storage returns the Storage API client.
func (c *Client) Storage() *storage_go.Client {
	return c.client.Storage
}
