package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/de-tools/airport-atlas/pkg/terminal/commands"
)

func main() {
	// Settings may come from a .env file as AIRPORT_ATLAS_* variables.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	env := commands.NewEnv(os.Stdout, os.Stderr)
	rootCmd := commands.NewServeCmd(env)
	rootCmd.Use = "web"
	rootCmd.SilenceUsage = true
	env.AddPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
