package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "")
	t.Setenv("WEB_PORT", "")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default MaxOpenConns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default MaxIdleConns 5, got %d", cfg.Database.MaxIdleConns)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Web.Port)
	}
	if cfg.Web.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %s", cfg.Web.Host)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/vcselect")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("WEB_PORT", "9090")
	t.Setenv("WEB_HOST", "127.0.0.1")

	cfg := Load()

	if cfg.Database.URL != "postgres://localhost/vcselect" {
		t.Errorf("unexpected database URL: %s", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("expected MaxOpenConns 50, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Web.Port)
	}
	if cfg.Web.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Web.Host)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("WEB_PORT", "-3")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected fallback MaxOpenConns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected fallback port 8080, got %d", cfg.Web.Port)
	}
}

func TestLoad_EmbeddedSelectDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Defaults.Select.Threshold != 0.01 {
		t.Errorf("expected default threshold 0.01, got %g", cfg.Defaults.Select.Threshold)
	}
	if cfg.Defaults.Select.MatchMode != "all" {
		t.Errorf("expected default match mode all, got %s", cfg.Defaults.Select.MatchMode)
	}
	if cfg.Defaults.Select.SelectMode != "replace" {
		t.Errorf("expected default select mode replace, got %s", cfg.Defaults.Select.SelectMode)
	}
	if cfg.Defaults.Select.Reduction != "first" {
		t.Errorf("expected default reduction first, got %s", cfg.Defaults.Select.Reduction)
	}
}

func TestNamedColor(t *testing.T) {
	cfg := Load()

	hex, ok := cfg.NamedColor("red")
	if !ok || hex != "#ff0000" {
		t.Errorf("expected red -> #ff0000, got %q ok=%v", hex, ok)
	}

	if _, ok := cfg.NamedColor("mauve-ish"); ok {
		t.Error("expected unknown color name to miss")
	}
}
