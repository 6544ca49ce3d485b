package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/malusev998/currency-quotes/cli/cmd"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error while loading .env: %v", err)
	}

	config := &cmd.Config{
		Ctx:     context.Background(),
		Builder: builder{},
	}

	if err := cmd.Execute(config); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
