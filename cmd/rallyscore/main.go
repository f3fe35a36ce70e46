package main

import (
	"os"

	"github.com/msto63/rallyscore/cmd/rallyscore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
