// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"collabquest/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Connect creates a Zeebe client and verifies the gateway answers a topology request.
func Connect(ctx context.Context, cfg config.CamundaConfig) (zbc.Client, error) {
	client, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	if err := HealthCheck(ctx, client, config.GetDuration(cfg.RequestTimeout)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return client, nil
}

// HealthCheck performs a topology request against the gateway.
func HealthCheck(ctx context.Context, client zbc.Client, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
