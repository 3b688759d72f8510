package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	APIPort string
	JWTKey  []byte

	SessionTTL time.Duration

	MaxLoginAttempts int
	LockoutWindow    time.Duration
	BcryptCost       int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AttemptRetention      time.Duration
	JanitorInterval       time.Duration
	JanitorLockKey        string
	JanitorLockTTLSeconds int

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		AppName:    getEnv("APP_NAME", "Sales System"),
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 8)) * time.Hour,

		MaxLoginAttempts: getEnvAsInt("MAX_LOGIN_ATTEMPTS", 5),
		LockoutWindow:    time.Duration(getEnvAsInt("LOCKOUT_WINDOW_MINUTES", 15)) * time.Minute,
		BcryptCost:       getEnvAsInt("BCRYPT_COST", 12),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "sales_system_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AttemptRetention:      time.Duration(getEnvAsInt("ATTEMPT_RETENTION_HOURS", 24)) * time.Hour,
		JanitorInterval:       time.Duration(getEnvAsInt("JANITOR_INTERVAL_MINUTES", 30)) * time.Minute,
		JanitorLockKey:        getEnv("JANITOR_LOCK_KEY", "login_attempt_janitor_lock"),
		JanitorLockTTLSeconds: getEnvAsInt("JANITOR_LOCK_TTL_SECONDS", 300),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "25"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@sales-system.local"),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
