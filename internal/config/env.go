package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr        string
	GinMode        string
	DBDSN          string
	RedisAddr      string
	TollAPIBaseURL string
	TollAPIKey     string
	JWTSecret      string
	CORSOrigins    []string
}

func LoadEnv() Env {
	appAddr := strings.TrimSpace(os.Getenv("APP_ADDR"))
	if appAddr == "" {
		appAddr = ":8080"
	}

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = "root:@tcp(127.0.0.1:3306)/fleetsync?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
	}

	tollBase := strings.TrimSpace(os.Getenv("TOLL_API_BASE_URL"))
	if tollBase == "" {
		tollBase = "http://127.0.0.1:9090"
	}

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	origins := []string{}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}

	return Env{
		AppAddr:        appAddr,
		GinMode:        strings.TrimSpace(os.Getenv("GIN_MODE")),
		DBDSN:          dsn,
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TollAPIBaseURL: tollBase,
		TollAPIKey:     strings.TrimSpace(os.Getenv("TOLL_API_KEY")),
		JWTSecret:      secret,
		CORSOrigins:    origins,
	}
}
