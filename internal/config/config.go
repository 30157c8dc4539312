package config

import (
	"os"
	"strconv"
	"strings"
)

// defaultThemes is the candidate label set handed to the zero-shot
// classifier when a caller does not supply its own.
var defaultThemes = []string{
	"relationships",
	"work stress",
	"self-reflection",
	"family",
	"health",
	"change transition",
	"daily life",
	"personal growth",
	"anxiety",
	"depression",
	"motivation",
	"goals",
	"past experiences",
}

type Config struct {
	Port         int
	NatsURL      string
	NatsToken    string
	DatabaseURL  string
	LogLevel     string
	InferenceURL string
	APIToken     string
	Themes       []string
}

func Load() Config {
	return Config{
		Port:         envInt("MIRROR_PORT", 8760),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		InferenceURL: envStr("INFERENCE_URL", "http://inference:8600"),
		APIToken:     envStr("MIRROR_API_TOKEN", ""),
		Themes:       envList("MIRROR_THEMES", defaultThemes),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
