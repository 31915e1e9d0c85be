package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DATABASE_URL string
	HTTP_ADDR    string
	LOG_LEVEL    string

	JWT_SECRET                     string
	JWT_EXPIRATION_SECONDS         int
	JWT_REFRESH_EXPIRATION_SECONDS int

	REDIS_HOST              string
	REDIS_PORT              string
	REDIS_PASSWORD          string
	REDIS_USER_CACHE_EXPIRE int

	S3_ENDPOINT   string
	S3_REGION     string
	S3_BUCKET     string
	S3_ACCESS_KEY string
	S3_SECRET_KEY string
	S3_PUBLIC_URL string

	KAFKA_ADDRESS string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	BANNED_IPS         string
	BANNED_USER_AGENTS string
	RATE_LIMIT         float64
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DATABASE_URL: os.Getenv("DATABASE_URL"),
		HTTP_ADDR:    getEnv("HTTP_ADDR", ":8080"),
		LOG_LEVEL:    getEnv("LOG_LEVEL", "info"),

		JWT_SECRET:                     os.Getenv("JWT_SECRET"),
		JWT_EXPIRATION_SECONDS:         getEnvAsInt("JWT_EXPIRATION_SECONDS", 3600),
		JWT_REFRESH_EXPIRATION_SECONDS: getEnvAsInt("JWT_REFRESH_EXPIRATION_SECONDS", 3600*24*7),

		REDIS_HOST:              getEnv("REDIS_HOST", "localhost"),
		REDIS_PORT:              getEnv("REDIS_PORT", "6379"),
		REDIS_PASSWORD:          os.Getenv("REDIS_PASSWORD"),
		REDIS_USER_CACHE_EXPIRE: getEnvAsInt("REDIS_USER_CACHE_EXPIRE", 3600),

		S3_ENDPOINT:   os.Getenv("S3_ENDPOINT"),
		S3_REGION:     getEnv("S3_REGION", "us-east-1"),
		S3_BUCKET:     getEnv("S3_BUCKET", "avatars"),
		S3_ACCESS_KEY: os.Getenv("S3_ACCESS_KEY"),
		S3_SECRET_KEY: os.Getenv("S3_SECRET_KEY"),
		S3_PUBLIC_URL: os.Getenv("S3_PUBLIC_URL"),

		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),

		ES_URL:      os.Getenv("ES_URL"),
		ES_USER:     os.Getenv("ES_USER"),
		ES_PASSWORD: os.Getenv("ES_PASSWORD"),

		BANNED_IPS:         os.Getenv("BANNED_IPS"),
		BANNED_USER_AGENTS: os.Getenv("BANNED_USER_AGENTS"),
		RATE_LIMIT:         getEnvAsFloat("RATE_LIMIT", 0),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
