package config

import (
	"context"
	"errors"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.StoreDriver != StoreMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Session.Revocation || cfg.Session.BcryptCost != 12 || cfg.Session.Issuer != "instroom" {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if !cfg.UsingDevSecret || cfg.Session.Secret != DevSessionSecret {
		t.Fatal("expected development secret fallback")
	}
	if cfg.IsProduction() {
		t.Fatal("default env is not production")
	}
}

func TestLoadWith_ProductionRequiresSecret(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV": "production",
	}))
	if !errors.Is(err, ErrMissingSessionSecret) {
		t.Fatalf("expected ErrMissingSessionSecret, got %v", err)
	}

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":                "production",
		"SESSION_SECRET":     "s3cret",
		"SESSION_REVOCATION": "false",
		"STORE_DRIVER":       "postgres",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}
	if cfg.UsingDevSecret || cfg.Session.Secret != "s3cret" || cfg.Session.Revocation {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if !cfg.IsProduction() || cfg.StoreDriver != StorePostgres {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadWith_RejectsUnknownStore(t *testing.T) {
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_DRIVER": "sqlite",
	})); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}
