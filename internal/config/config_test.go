package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("ENV")
	os.Unsetenv("MAIL_PROVIDER")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.LogLevel)
	}

	if cfg.Env != "development" {
		t.Errorf("expected env 'development', got %s", cfg.Env)
	}

	if cfg.MailProvider != "smtp" {
		t.Errorf("expected default mail provider 'smtp', got %s", cfg.MailProvider)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("ENV", "production")
	os.Setenv("MAIL_PROVIDER", "ses")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("ENV")
		os.Unsetenv("MAIL_PROVIDER")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}

	if cfg.Env != "production" {
		t.Errorf("expected env 'production', got %s", cfg.Env)
	}

	if cfg.MailProvider != "ses" {
		t.Errorf("expected mail provider 'ses', got %s", cfg.MailProvider)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	os.Setenv("PORT", "not-a-port")
	defer os.Unsetenv("PORT")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a non-numeric PORT")
	}
}

func TestLoad_InvalidMailProvider(t *testing.T) {
	os.Setenv("MAIL_PROVIDER", "pigeon")
	defer os.Unsetenv("MAIL_PROVIDER")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown MAIL_PROVIDER")
	}
}
