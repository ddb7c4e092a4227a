package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/juryclean/internal/cli"
)

func main() {
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
