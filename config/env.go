package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv reads ENV_FILE (default .env) into the environment. A missing file is
// not an error; variables can be set by other means.
func LoadEnv() {
	file := getenv("ENV_FILE", ".env")
	if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
		log.Printf("Environment file %s not loaded: %v", file, err)
		return
	}
	log.Println("Environment variables loaded (if " + file + " present)")
}
