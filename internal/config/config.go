package config

import (
	"os"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// Generative model API
	GenAIAPIKey  string
	GenAIModel   string
	GenAIBaseURL string

	BlobBasePath string

	EnableLocalAuth bool
	AuthUser        string
	AuthPassHash    string // bcrypt
	AuthHMACSecret  string

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr: addr,

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		GenAIAPIKey:  os.Getenv("GENAI_API_KEY"),
		GenAIModel:   envOr("GENAI_MODEL", "gemini-2.5-flash"),
		GenAIBaseURL: envOr("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", false),
		AuthUser:        envOr("AUTH_USER", "learner"),
		AuthPassHash:    os.Getenv("AUTH_PASS_HASH"),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "grammarquiz-dev-key"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
