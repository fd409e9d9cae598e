package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the application reads.
type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Auth      AuthConfig
	Interview InterviewConfig
}

// Load builds the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	interview, err := loadInterviewConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Backend: backend, Auth: auth, Interview: interview}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	origins := []string{"*"}
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(raw, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}

	return ServerConfig{Addr: addr, AllowedOrigins: origins}, nil
}

// BackendConfig points at the interview backend that owns resume parsing,
// question generation and scoring.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

func loadBackendConfig() (BackendConfig, error) {
	baseURL := strings.TrimSpace(os.Getenv("BACKEND_BASE_URL"))
	if baseURL == "" {
		return BackendConfig{}, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeoutSeconds := 60
	if override, err := parseOptionalIntEnv("BACKEND_TIMEOUT_SECONDS"); err != nil {
		return BackendConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return BackendConfig{}, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return BackendConfig{
		BaseURL: baseURL,
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// AuthConfig describes the external auth provider.
type AuthConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// Enabled reports whether provider credentials were supplied.
func (c AuthConfig) Enabled() bool {
	return c.URL != "" && c.AnonKey != ""
}

func loadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		URL:       strings.TrimRight(strings.TrimSpace(os.Getenv("AUTH_URL")), "/"),
		AnonKey:   strings.TrimSpace(os.Getenv("AUTH_ANON_KEY")),
		JWTSecret: strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")),
	}

	if !cfg.Enabled() {
		return AuthConfig{}, fmt.Errorf("AUTH_URL and AUTH_ANON_KEY are required")
	}

	return cfg, nil
}

// InterviewConfig tunes the conversation controller.
type InterviewConfig struct {
	TurnBudget   time.Duration
	TickInterval time.Duration
}

func loadInterviewConfig() (InterviewConfig, error) {
	turnSeconds := 120
	if override, err := parseOptionalIntEnv("INTERVIEW_TURN_SECONDS"); err != nil {
		return InterviewConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return InterviewConfig{}, fmt.Errorf("INTERVIEW_TURN_SECONDS must be positive, got %d", *override)
		}
		turnSeconds = *override
	}

	return InterviewConfig{
		TurnBudget:   time.Duration(turnSeconds) * time.Second,
		TickInterval: time.Second,
	}, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
