package main

import (
	"os"

	"github.com/eadteachers/teachkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
