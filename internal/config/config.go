// config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI         string
	MongoDBName      string
	AuthURL          string
	RabbitURL        string
	MailURL          string
	Port             string
	FallbackFilePath string
	RetrievalTimeout time.Duration
}

func Load() *Config {
	// .env es opcional; en docker las variables vienen del entorno
	_ = godotenv.Load()

	return &Config{
		MongoURI:         getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName:      getEnv("MONGO_DB_NAME", "ecommerce_db"),
		AuthURL:          getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:        getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		MailURL:          getEnv("MAIL_URL", "http://host.docker.internal:3020"),
		Port:             getEnv("PORT", "8080"),
		FallbackFilePath: getEnv("FALLBACK_FILE", "orders_fallback.json"),
		RetrievalTimeout: getDurationEnv("RETRIEVAL_TIMEOUT_MS", 2000),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallbackMs int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return time.Duration(fallbackMs) * time.Millisecond
}
