package common

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	AppEnv        string // environment (development/production)
	ServerAddr    string // gin listen address
	RunnerAddr    string // runner JSON-RPC address
	CallbackAddr  string // server-side status callback JSON-RPC address
	DBHost        string
	DBPort        int
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string // asynq broker address
	RedisPassword string
	LogPath       string
	Engine        string // task engine: docker or local
	TaskImage     string // default container image for tasks
	WebhookSecret string
}

var config Config

func GetConfig() Config {
	return config
}

// InitConf loads .env when present, then resolves the configuration from
// the environment. Values without defaults must be set explicitly.
func InitConf() {
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "3306"))

	config = Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":8080"),
		RunnerAddr:    getEnv("RUNNER_ADDR", "localhost:8081"),
		CallbackAddr:  getEnv("CALLBACK_ADDR", "localhost:8082"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        dbPort,
		DBUser:        getEnv("DB_USER", ""),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBName:        getEnv("DB_NAME", "forge"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogPath:       getEnv("LOG_PATH", "./logs/forge.log"),
		Engine:        getEnv("ENGINE", "docker"),
		TaskImage:     getEnv("TASK_IMAGE", "alpine:3.17"),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
