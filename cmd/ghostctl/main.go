package main

import (
	"os"

	"github.com/hotlab/go-ghost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
