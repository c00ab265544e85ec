package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	Provider      string
	Model         string
	Temperature   float64
	OpenAIKey     string
	OpenAIBaseURL string
	OllamaHost    string
	Seed          int64
	MaxStatements int
	DBPath        string
	SetupPath     string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.Provider = getenv("PROVIDER", "random")
	c.Model = getenv("MODEL", "gpt-4o-mini")
	c.Temperature = getfloat("TEMPERATURE", 0.7)
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.OllamaHost = getenv("OLLAMA_HOST", "http://localhost:11434")
	c.Seed = getint("SEED", 0)
	c.MaxStatements = int(getint("MAX_STATEMENTS", 20))
	c.DBPath = getenv("DB_PATH", "./werewolf.db")
	c.SetupPath = os.Getenv("SETUP_PATH")
	return c
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
