// internal/workers/verification/start-skill-verification/config.go
package startskillverification

import (
	"time"

	"collabquest/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the job deadline from the worker timeout. Quiz
// generation dominates, so the default is generous.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Config{Timeout: timeout}
}
