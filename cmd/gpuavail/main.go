package main

import (
	"os"

	"github.com/dm/gpuavail/cmd/gpuavail/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
