package main

import (
	"os"

	"github.com/jmgilman/relcut/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
