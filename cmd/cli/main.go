// Package main is the entry point for the registry CLI binary.
package main

import (
	"os"

	"platform-registry/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
