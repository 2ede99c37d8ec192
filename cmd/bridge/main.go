package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
