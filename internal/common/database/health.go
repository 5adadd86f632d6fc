// internal/common/database/health.go
package database

import (
	"context"
	"fmt"
)

// Pinger is satisfied by every client in this package.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is a named readiness probe.
type Check struct {
	Name   string
	Pinger Pinger
}

// CheckAll pings every non-nil target in order and reports the first failure.
func CheckAll(ctx context.Context, checks ...Check) error {
	for _, c := range checks {
		if c.Pinger == nil {
			continue
		}
		if err := c.Pinger.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}
