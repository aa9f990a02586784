package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Generator.NumCustomers != 2000 {
		t.Fatalf("expected 2000 customers, got %d", cfg.Generator.NumCustomers)
	}
	if cfg.Generator.NumProducts != 200 {
		t.Fatalf("expected 200 products, got %d", cfg.Generator.NumProducts)
	}
	if cfg.Generator.OrdersMin != 50 || cfg.Generator.OrdersMax != 150 {
		t.Fatalf("unexpected orders band %d-%d", cfg.Generator.OrdersMin, cfg.Generator.OrdersMax)
	}
	if cfg.Chaos.ErrorRate != 0.10 {
		t.Fatalf("expected error rate 0.10, got %f", cfg.Chaos.ErrorRate)
	}
	if cfg.Backfill.Days != 365 {
		t.Fatalf("expected 365 backfill days, got %d", cfg.Backfill.Days)
	}
	if cfg.Backfill.DataDir != "data" {
		t.Fatalf("unexpected data dir %q", cfg.Backfill.DataDir)
	}
	if cfg.GCS.LandingPrefix != "landing" {
		t.Fatalf("unexpected landing prefix %q", cfg.GCS.LandingPrefix)
	}
	if cfg.Snowflake.Configured() {
		t.Fatal("snowflake should not be configured from defaults")
	}
}

func TestLoad_RejectsOutOfRangeErrorRate(t *testing.T) {
	t.Setenv(EnvChaosErrorRate, "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error for error rate above 1")
	}
}

func TestLoad_RejectsInvertedOrdersBand(t *testing.T) {
	t.Setenv(EnvOrdersMin, "200")
	t.Setenv(EnvOrdersMax, "100")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for inverted orders band")
	}
	if !strings.Contains(err.Error(), "orders band inverted") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvNumCustomers, "10")
	t.Setenv(EnvGeneratorSeed, "42")
	t.Setenv(EnvGCSBucketName, "edqm-landing")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Generator.NumCustomers != 10 {
		t.Fatalf("expected 10 customers, got %d", cfg.Generator.NumCustomers)
	}
	if cfg.Generator.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", cfg.Generator.Seed)
	}
	if cfg.GCS.BucketName != "edqm-landing" {
		t.Fatalf("unexpected bucket %q", cfg.GCS.BucketName)
	}
}
