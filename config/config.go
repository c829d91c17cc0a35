package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	MongoURI           string
	DBName             string
	Port               string
	LogLevel           string
	JWTSecret          string
	AWSRegion          string
	AWSBucketName      string
	S3PublicBaseURL    string
	SendGridAPIKey     string
	SenderEmail        string
	SenderName         string
	NotifyEmail        string
	RedisURL           string
	CacheTTL           time.Duration
	AllowedOrigins     []string
	AdminEmails        []string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	DBName = getEnv("DB_NAME", "soundstage")
	Port = getEnv("PORT", "8080")
	LogLevel = getEnv("LOG_LEVEL", "info")
	JWTSecret = os.Getenv("JWT_SECRET")

	AWSRegion = getEnv("AWS_REGION", "ap-southeast-1")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")
	S3PublicBaseURL = strings.TrimSuffix(os.Getenv("S3_PUBLIC_BASE_URL"), "/")

	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	SenderEmail = getEnv("SENDER_EMAIL", "no-reply@soundstage-events.com")
	SenderName = getEnv("SENDER_NAME", "Soundstage Events")
	NotifyEmail = os.Getenv("NOTIFY_EMAIL")

	RedisURL = os.Getenv("REDIS_URL")
	CacheTTL = 5 * time.Minute
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			CacheTTL = d
		} else {
			log.Printf("Invalid CACHE_TTL %q, using %s", v, CacheTTL)
		}
	}

	AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "*"))
	AdminEmails = splitList(strings.ToLower(os.Getenv("ADMIN_EMAILS")))

	GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	GoogleRedirectURL = getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback")
}

// IsAdminEmail reports whether email is in the ADMIN_EMAILS allowlist.
func IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range AdminEmails {
		if e == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
