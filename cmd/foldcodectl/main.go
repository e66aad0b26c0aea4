package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env with FOLDCODE_ASSET / FOLDCODE_DB defaults.
	_ = godotenv.Load(".env")
	Execute()
}
