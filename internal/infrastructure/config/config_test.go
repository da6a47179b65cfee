package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.Auth.JWTTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", cfg.Auth.JWTTTL)
	}
	if cfg.Auth.DefaultStudentPassword != "FeeM@2025" {
		t.Fatalf("unexpected default password: %s", cfg.Auth.DefaultStudentPassword)
	}
	if cfg.Admin.Name != "System Admin" || cfg.Admin.Username != "admin" {
		t.Fatalf("unexpected admin defaults: %+v", cfg.Admin)
	}
	if cfg.Mongo.Database != "student_records" {
		t.Fatalf("unexpected database: %s", cfg.Mongo.Database)
	}
	if cfg.Reconcile.LockTTL != 10*time.Second || cfg.Reconcile.Workers != 8 {
		t.Fatalf("unexpected reconcile config: %+v", cfg.Reconcile)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"JWT_TTL":           "15m",
		"ENV":               "production",
		"RECONCILE_WORKERS": "2",
		"ADMIN_EMAIL":       "root@campus.edu",
	}))
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Auth.JWTTTL != 15*time.Minute {
		t.Fatalf("unexpected ttl: %s", cfg.Auth.JWTTTL)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
	if cfg.Reconcile.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Reconcile.Workers)
	}
	if cfg.Admin.Email != "root@campus.edu" {
		t.Fatalf("unexpected admin email: %s", cfg.Admin.Email)
	}
}

func TestLoad_RequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_RejectsZeroWorkers(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":        "s3cret",
		"RECONCILE_WORKERS": "0",
	}))
	if err == nil {
		t.Fatalf("expected error for zero workers")
	}
}
