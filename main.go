package main

import (
	"os"

	"github.com/abhisek/namebayes/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
