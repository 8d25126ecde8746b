package config

import (
	"os"
	"strconv"
	"sync"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName           string
	Port              string
	Env               string
	Debug             bool
	APIPrefix         string
	ResultsPerPage    int
	MaxResultsPerPage int
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:           getenv("APP_NAME", "apiprovider"),
			Port:              getenv("PORT", "8080"),
			Env:               os.Getenv("APP_ENV"),
			Debug:             os.Getenv("DEBUG") == "true",
			APIPrefix:         getenv("API_PREFIX", "/api"),
			ResultsPerPage:    getenvInt("RESULTS_PER_PAGE", 10),
			MaxResultsPerPage: getenvInt("MAX_RESULTS_PER_PAGE", 100),
		}
	})
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}
