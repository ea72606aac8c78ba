package backend

import (
	"context"
	"fmt"
)

type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
}

// Probe checks backend liveness. Any failure, including a rejection or an
// unreadable body, is reported as ErrUnreachable.
func (c *Client) Probe(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.getJSON(ctx, healthPath, &health); err != nil {
		c.logger.Debug("backend probe failed")
		return nil, fmt.Errorf("%w: probe: %w", ErrUnreachable, err)
	}

	return &health, nil
}
