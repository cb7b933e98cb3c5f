package balancer

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/ak/nutriplan/internal/domain/engine"
	"github.com/ak/nutriplan/internal/domain/services"
	"github.com/ak/nutriplan/internal/infrastructure/config"
	"github.com/ak/nutriplan/internal/pkg/logger"
	"go.uber.org/zap"
)

// Client talks to the external macro-balancing computation service over HTTP.
type Client struct {
	http   *resty.Client
	logger *logger.Logger
}

// NewClient creates a balancing service client from configuration
func NewClient(cfg *config.BalancerConfig, log *logger.Logger) *Client {
	http := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{
		http:   http,
		logger: log.WithComponent("balancer_client"),
	}
}

// Invoke sends a validated balancing request and decodes the outcome.
// A non-2xx status or transport failure surfaces as an error; the caller
// decides how to report it.
func (c *Client) Invoke(ctx context.Context, req *engine.BalancingRequest) (*services.BalanceResult, error) {
	var result services.BalanceResult

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/api/v1/balance")
	if err != nil {
		c.logger.Error("balancing service dispatch failed", zap.Error(err))
		return nil, fmt.Errorf("failed to reach balancing service: %w", err)
	}

	if resp.IsError() && result.Error == "" {
		c.logger.Error("balancing service returned error status",
			zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("balancing service returned status %d", resp.StatusCode())
	}

	return &result, nil
}
