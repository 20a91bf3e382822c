package config

import (
	"os"      // For environment variables
	"strconv" // For string to int/float conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort      string  // Application port
	DBUser       string  // Database user
	DBPassword   string  // Database password
	DBHost       string  // Database host
	DBPort       string  // Database port
	DBName       string  // Database name
	DBSSLMode    string  // Postgres sslmode
	JWTSecret    string  // JWT secret key
	RedisAddr    string  // Redis server address
	RedisPass    string  // Redis password
	RedisDB      int     // Redis database number
	ReferralRate float64 // Commission rate on confirmed deposits of referred users
	IsProd       bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	referralRate, err := strconv.ParseFloat(os.Getenv("REFERRAL_RATE"), 64)
	if err != nil || referralRate < 0 {
		referralRate = 0.05 // Default commission rate: 5%
	}
	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable" // Default for local development
	}
	return &Config{
		AppPort:      os.Getenv("APP_PORT"),          // Application port
		DBUser:       os.Getenv("DB_USER"),           // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:       os.Getenv("DB_HOST"),           // Database host
		DBPort:       os.Getenv("DB_PORT"),           // Database port
		DBName:       os.Getenv("DB_NAME"),           // Database name
		DBSSLMode:    sslMode,                        // Postgres sslmode
		JWTSecret:    os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:    os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:      redisDB,                        // Redis database number
		ReferralRate: referralRate,                   // Referral commission rate
		IsProd:       os.Getenv("IS_PROD") == "true", // Is production environment
	}
}

// DSN builds the Postgres connection string
func (c *Config) DSN() string {
	return "host=" + c.DBHost + " user=" + c.DBUser + " password=" + c.DBPassword +
		" dbname=" + c.DBName + " port=" + c.DBPort + " sslmode=" + c.DBSSLMode
}
