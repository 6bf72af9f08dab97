package config

import (
	"fmt"
	"os"
)

type Config struct {
	ServiceName  string
	AppPort      string
	LogLevel     string
	DB           DBConfig
	NatsURL      string
	OtelEndpoint string
	S3           S3Config
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

type S3Config struct {
	Endpoint     string
	Region       string
	BucketName   string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// Enabled reports whether enough settings are present to presign uploads.
func (c S3Config) Enabled() bool {
	return c.BucketName != "" && c.Region != ""
}

// Load reads the configuration from the environment. Callers load .env files
// with godotenv before calling it.
func Load() Config {
	return Config{
		ServiceName: getEnv("SERVICE_NAME", "todo-service"),
		AppPort:     getEnv("APP_PORT", "8003"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		NatsURL:      os.Getenv("NATS_URL"),
		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "jaeger:4317"),
		S3: S3Config{
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			Region:       os.Getenv("AWS_REGION"),
			BucketName:   os.Getenv("S3_BUCKET_NAME"),
			AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") == "true",
		},
	}
}

func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
