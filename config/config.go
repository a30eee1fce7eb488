package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime settings read from the environment (.env is loaded in main).
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret     string
	StaffTokenTTL time.Duration
	TableTokenTTL time.Duration
	PublicBaseURL string
	CORSOrigins   []string
	LogLevel      string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	TicketSequence string

	RabbitMQURL string
	PushQueue   string

	SeedDemo        bool
	PublicRateLimit int
}

func Load() Config {
	return Config{
		Port:    envStr("PORT", "8080"),
		GinMode: envStr("GIN_MODE", "debug"),

		DBDriver: strings.ToLower(envStr("DB_DRIVER", "mysql")),
		DBDSN:    envStr("DB_DSN", "root:@tcp(127.0.0.1:3306)/resto_bar?charset=utf8mb4&parseTime=True&loc=Local"),

		JWTSecret:     envStr("JWT_SECRET", "RestoBarDevSecret"),
		StaffTokenTTL: envDur("STAFF_TOKEN_TTL", 12*time.Hour),
		TableTokenTTL: envDur("TABLE_TOKEN_TTL", 24*time.Hour),
		PublicBaseURL: strings.TrimRight(envStr("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		CORSOrigins:   splitList(envStr("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:      envStr("LOG_LEVEL", "info"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		TicketSequence: strings.ToLower(envStr("TICKET_SEQUENCER", "db")),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		PushQueue:   envStr("PUSH_QUEUE", "kitchen.push"),

		SeedDemo:        envBool("SEED_DEMO", false),
		PublicRateLimit: envInt("PUBLIC_RATE_LIMIT", 20),
	}
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
