package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"fleet-leak-consumer/internal/models"
	"fleet-leak-consumer/internal/processor"
)

// InventoryClient submits rack health overrides to the central inventory API.
type InventoryClient struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewInventoryClient creates an inventory API client.
func NewInventoryClient(baseURL string, timeout time.Duration, logger *zap.Logger) *InventoryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &InventoryClient{
		httpClient: client,
		logger:     logger,
	}
}

// InsertRackHealthReport inserts (or replaces) this service's health override
// for a rack.
func (c *InventoryClient) InsertRackHealthReport(ctx context.Context, rackID string, report *models.HealthReport) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("rackID", rackID).
		SetBody(report).
		Put("/v1/racks/{rackID}/health-report-override")

	if err != nil {
		return fmt.Errorf("failed to insert health override for rack %s: %w", rackID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("inventory API rejected health override for rack %s: status %d: %s",
			rackID, resp.StatusCode(), resp.String())
	}

	c.logger.Debug("Inserted rack health override",
		zap.String("rack_id", rackID),
		zap.Int("status_code", resp.StatusCode()),
	)

	return nil
}

// RemoveRackHealthReport removes this service's health override for a rack.
// The call is scoped by source so overrides created by other services stay
// untouched.
func (c *InventoryClient) RemoveRackHealthReport(ctx context.Context, rackID string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("rackID", rackID).
		SetQueryParam("source", processor.HealthReportSource).
		Delete("/v1/racks/{rackID}/health-report-override")

	if err != nil {
		return fmt.Errorf("failed to remove health override for rack %s: %w", rackID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("inventory API rejected override removal for rack %s: status %d: %s",
			rackID, resp.StatusCode(), resp.String())
	}

	c.logger.Debug("Removed rack health override",
		zap.String("rack_id", rackID),
		zap.Int("status_code", resp.StatusCode()),
	)

	return nil
}
