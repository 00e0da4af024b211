package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.ModelMaxTokens != 1024 {
		t.Errorf("expected default max tokens 1024, got %d", cfg.ModelMaxTokens)
	}
	if !cfg.ChatLog.Enabled {
		t.Error("expected chat log enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_MAX_TOKENS", "2048")
	t.Setenv("CHAT_LOG_ENABLED", "off")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.Port)
	}
	if cfg.ModelMaxTokens != 2048 {
		t.Errorf("expected max tokens 2048, got %d", cfg.ModelMaxTokens)
	}
	if cfg.ChatLog.Enabled {
		t.Error("expected chat log disabled")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: "8080", DBPath: "./x.db", ModelMaxTokens: 100}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.DBPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for empty DB_PATH")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{FrontendURL: ""}
	if !cfg.IsDevelopment() {
		t.Error("empty frontend URL should mean development")
	}
	cfg.FrontendURL = "https://tutor.example.com"
	if cfg.IsDevelopment() {
		t.Error("production URL should not mean development")
	}
}
