package main

import (
	"fmt"
	"os"

	"github.com/mmynk/dinnerpicker/internal/config"
)

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
