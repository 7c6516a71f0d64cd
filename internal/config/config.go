package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr          string
	BackendURL        string
	RedisAddr         string
	RedisPassword     string
	RequestTimeout    time.Duration
	PollInterval      time.Duration
	SeenTTL           time.Duration
	TeacherRewardRate float64
	AgentUsername     string
	AgentPassword     string
}

func Load() Config {
	// Optional; real env vars always win over .env values.
	_ = godotenv.Load()

	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8090"),
		BackendURL:        getenv("BACKEND_URL", "http://127.0.0.1:5000/api"),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RequestTimeout:    getenvDuration("REQUEST_TIMEOUT", 15*time.Second),
		PollInterval:      getenvDuration("NOTIFY_POLL_INTERVAL", 2*time.Second),
		SeenTTL:           getenvDuration("NOTIFY_SEEN_TTL", 12*time.Hour),
		TeacherRewardRate: getenvFloat("TEACHER_REWARD_RATE", 3),
		AgentUsername:     getenv("AGENT_USERNAME", ""),
		AgentPassword:     getenv("AGENT_PASSWORD", ""),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
