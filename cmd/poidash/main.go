// cmd/poidash/main.go

package main

import (
	"os"

	"poidash/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
