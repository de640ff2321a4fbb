package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"PROPOSALS_TEST_PORT" envDefault:"123"`
	Timeout time.Duration `env:"PROPOSALS_TEST_TIMEOUT" envDefault:"5s"`
	Kinds   []string      `env:"PROPOSALS_TEST_KINDS" envDefault:"cpf,cnpj" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("expected default timeout 5s, got %s", cfg.Timeout)
	}
	if len(cfg.Kinds) != 2 {
		t.Fatalf("expected two default kinds, got %v", cfg.Kinds)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("PROPOSALS_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}
