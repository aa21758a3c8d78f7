package main

import (
	"log"
	"os"

	"github.com/cleanflow/bedsync/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// BEDSYNC_ENV_FILE points at an env file outside the working directory.
	var envFiles []string
	if f := os.Getenv("BEDSYNC_ENV_FILE"); f != "" {
		envFiles = append(envFiles, f)
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("No env file loaded (%v), using system environment variables", err)
	}

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
