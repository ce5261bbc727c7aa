package main

import (
	"os"

	"github.com/gridcalc/gridcalc/cmd/gridcalc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
