package main

import (
	"fmt"
	"os"

	"github.com/bnema/lobbymatch/cmd"
	"github.com/bnema/lobbymatch/internal/config"
)

func main() {
	if err := config.LoadEnvFile(config.DotEnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
