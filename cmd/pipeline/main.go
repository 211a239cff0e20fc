package main

import (
	"errors"
	"os"

	"github.com/nguyentantai21042004/notes-flow/internal/cli"
	"github.com/nguyentantai21042004/notes-flow/internal/output"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cli.NewRootCmd(&cli.Dependencies{})
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, cli.ErrActionRequired) {
			return 2
		}
		output.NewFormatter(os.Stderr).Error(err.Error())
		return 1
	}
	return 0
}
