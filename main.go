package main

import (
	"os"

	"github.com/easypaper/easypaper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
