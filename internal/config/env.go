package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

type Env struct {
	AppAddr string
	GinMode string

	DBDSN string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	AdminAPIKey string

	UploadDir      string
	MaxUploadBytes int64

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	BootstrapAgentEmail    string
	BootstrapAgentPassword string
	BootstrapAgentName     string
	BootstrapAgentPhone    string

	CORSAllowedOrigins []string
}

// LoadEnv reads the process environment, optionally seeded from a local .env file.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppAddr: getEnv("APP_ADDR", ":8080"),
		GinMode: strings.TrimSpace(os.Getenv("GIN_MODE")),

		DBDSN: strings.TrimSpace(os.Getenv("DB_DSN")),

		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:  getBool("COOKIE_SECURE", false),

		AdminAPIKey: strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),

		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     int(getInt64("SMTP_PORT", 587)),
		SMTPUser:     strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     strings.TrimSpace(os.Getenv("MAIL_FROM")),

		BootstrapAgentEmail:    strings.TrimSpace(os.Getenv("BOOTSTRAP_AGENT_EMAIL")),
		BootstrapAgentPassword: os.Getenv("BOOTSTRAP_AGENT_PASSWORD"),
		BootstrapAgentName:     getEnv("BOOTSTRAP_AGENT_NAME", "Main Admin"),
		BootstrapAgentPhone:    strings.TrimSpace(os.Getenv("BOOTSTRAP_AGENT_PHONE")),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")),
	}

	if env.DBDSN == "" {
		env.DBDSN = buildDSN(
			getEnv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "campushub"),
		)
	}
	if env.MailFrom == "" {
		env.MailFrom = env.SMTPUser
	}

	return env
}

// Validate reports configuration that would make the server unsafe to start.
func (e Env) Validate() error {
	if e.SessionSecret == "" {
		return errMissing("SESSION_SECRET")
	}
	if len(e.SessionSecret) < 16 {
		log.Println("warning: SESSION_SECRET is shorter than 16 characters")
	}
	if e.MaxUploadBytes <= 0 {
		return errMissing("MAX_UPLOAD_BYTES")
	}
	return nil
}

// SMTPEnabled is true when an SMTP relay has been configured.
func (e Env) SMTPEnabled() bool {
	return e.SMTPHost != "" && e.MailFrom != ""
}

type missingEnvError string

func (e missingEnvError) Error() string { return string(e) + " is required" }

func errMissing(key string) error { return missingEnvError(key) }

func buildDSN(user, pass, host, port, name string) string {
	return user + ":" + pass + "@tcp(" + host + ":" + port + ")/" + name +
		"?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("warning: invalid %s (%q), using default %d", key, v, def)
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
