package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ChatRateLimit      int // messages per minute per user
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	TaobaoAppKey    string
	TaobaoAppSecret string
	TaobaoBaseURL   string
	TaobaoAdzoneID  string
	TaobaoMaterial  string
	ProductsTopic   string // products-observed topic name
}

type AIConfig struct {
	LLMProvider string // "ollama", "openai" or "deepseek"
	LLMModel    string
	LLMBaseURL  string
	LLMAPIKey   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ChatRateLimit:      getEnvAsInt("CHAT_RATE_LIMIT", 30),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			TaobaoAppKey:    getEnv("TAOBAO_APP_KEY", ""),
			TaobaoAppSecret: getEnv("TAOBAO_APP_SECRET", ""),
			TaobaoBaseURL:   getEnv("TAOBAO_BASE_URL", "https://eco.taobao.com/router/rest"),
			TaobaoAdzoneID:  getEnv("TAOBAO_ADZONE_ID", ""),
			TaobaoMaterial:  getEnv("TAOBAO_MATERIAL_ID", ""),
			ProductsTopic:   getEnv("PRODUCTS_OBSERVED_TOPIC_NAME", "PRODUCTS_OBSERVED"),
		},
		Ai: AIConfig{
			LLMProvider: getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:    getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:  getEnv("LLM_BASE_URL", "http://localhost:11434"),
			LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
