package config

import (
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "bare integer is milliseconds",
			key:      "TEST_DURATION_MS",
			value:    "3600000",
			def:      time.Second,
			expected: time.Hour,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", value: "true", def: false, expected: true},
		{name: "false value", value: "false", def: true, expected: false},
		{name: "invalid value uses default", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv("TEST_BOOL", tt.value)
			}
			if result := mustBool("TEST_BOOL", tt.def); result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://api.openai.com/v1/", "https://api.openai.com/v1"},
		{"ark.cn-beijing.volces.com/api/v3", "https://ark.cn-beijing.volces.com/api/v3"},
		{"http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := normalizeBaseURL(tt.in); got != tt.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePort(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"3001", ":3001"},
		{":8080", ":8080"},
		{"127.0.0.1:9000", "127.0.0.1:9000"},
	}
	for _, tt := range tests {
		if got := normalizePort(tt.in); got != tt.want {
			t.Errorf("normalizePort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MCPHUB_CACHE_BACKEND", "")
	t.Setenv("MCPHUB_LLM_API_KEY", "")

	cfg := Load()

	if cfg.ListenPort != ":3001" {
		t.Errorf("ListenPort = %q, want :3001", cfg.ListenPort)
	}
	if cfg.ListingTTL != time.Hour || cfg.EnrichTTL != time.Hour {
		t.Errorf("TTL defaults = %v / %v, want 1h", cfg.ListingTTL, cfg.EnrichTTL)
	}
	if cfg.CacheBackend != CacheBackendDisk {
		t.Errorf("CacheBackend = %q, want disk", cfg.CacheBackend)
	}
	if cfg.LLMModel != "gpt-3.5-turbo" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.LLMConfigured {
		t.Error("LLMConfigured should be false without an API key")
	}
}

func TestLoadRedisBackendRequiresAddr(t *testing.T) {
	t.Setenv("MCPHUB_CACHE_BACKEND", "redis")
	t.Setenv("MCPHUB_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when the redis backend has no address")
		}
	}()
	Load()
}

func TestLoadInvalidBackendPanics(t *testing.T) {
	t.Setenv("MCPHUB_CACHE_BACKEND", "memcached")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic on an unknown cache backend")
		}
	}()
	Load()
}
