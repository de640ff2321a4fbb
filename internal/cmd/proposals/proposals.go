// Package proposals parses proposals service flags and launches the service.
package proposals

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/proposals/internal/platform/cmd"
	"github.com/louisbranch/proposals/internal/platform/logging"
	server "github.com/louisbranch/proposals/internal/services/proposals/app"
)

// Config holds proposals command configuration.
type Config struct {
	Port                  int           `env:"PROPOSALS_PORT" envDefault:"8095"`
	DBDriver              string        `env:"PROPOSALS_DB_DRIVER" envDefault:"sqlite"`
	DBPath                string        `env:"PROPOSALS_DB_PATH" envDefault:"data/proposals.db"`
	DBDSN                 string        `env:"PROPOSALS_DB_DSN"`
	EligibilityURL        string        `env:"PROPOSALS_ELIGIBILITY_URL" envDefault:"http://localhost:9999"`
	EligibilityTimeout    time.Duration `env:"PROPOSALS_ELIGIBILITY_TIMEOUT" envDefault:"5s"`
	TxTimeout             time.Duration `env:"PROPOSALS_TX_TIMEOUT" envDefault:"15s"`
	AcceptedDocumentKinds []string      `env:"PROPOSALS_ACCEPTED_DOCUMENT_KINDS" envDefault:"cpf,cnpj" envSeparator:","`
	MetricsAddr           string        `env:"PROPOSALS_METRICS_ADDR"`
	LogLevel              string        `env:"PROPOSALS_LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	kinds := strings.Join(cfg.AcceptedDocumentKinds, ",")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The proposals gRPC server port")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Storage driver (sqlite or postgres)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.DBDSN, "db-dsn", cfg.DBDSN, "PostgreSQL connection string (postgres driver)")
	fs.StringVar(&cfg.EligibilityURL, "eligibility-url", cfg.EligibilityURL, "Financial analysis service base URL")
	fs.DurationVar(&cfg.EligibilityTimeout, "eligibility-timeout", cfg.EligibilityTimeout, "Timeout for one analysis call")
	fs.DurationVar(&cfg.TxTimeout, "tx-timeout", cfg.TxTimeout, "Timeout for one intake transaction once it began")
	fs.StringVar(&kinds, "accepted-document-kinds", kinds, "Comma separated document kinds allowed to apply")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Metrics HTTP listen address (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.AcceptedDocumentKinds = splitList(kinds)
	if cfg.Port <= 0 {
		return Config{}, fmt.Errorf("port must be positive, got %d", cfg.Port)
	}
	if cfg.TxTimeout <= cfg.EligibilityTimeout {
		return Config{}, fmt.Errorf("transaction timeout %s must exceed eligibility timeout %s", cfg.TxTimeout, cfg.EligibilityTimeout)
	}
	return cfg, nil
}

// Run starts the proposals gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	logger := logging.New(cfg.LogLevel, entrypoint.ServiceProposals)
	slog.SetDefault(logger)
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceProposals, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return server.Run(ctx, cfg.serverConfig(logger))
	})
}

func (c Config) serverConfig(logger *slog.Logger) server.Config {
	return server.Config{
		Addr:                  fmt.Sprintf(":%d", c.Port),
		DBDriver:              c.DBDriver,
		DBPath:                c.DBPath,
		DBDSN:                 c.DBDSN,
		EligibilityURL:        c.EligibilityURL,
		EligibilityTimeout:    c.EligibilityTimeout,
		TxTimeout:             c.TxTimeout,
		AcceptedDocumentKinds: c.AcceptedDocumentKinds,
		MetricsAddr:           c.MetricsAddr,
		Logger:                logger,
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
