package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/summarize/internal/config"
	"github.com/aretw0/summarize/internal/logging"
)

// createLogger configures the application logger from the config.
// It always writes to w (stderr in practice) to keep stdout for the trial.
func createLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return logging.NewWithFormat(w, level, cfg.LogFormat), nil
}
