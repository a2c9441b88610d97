// Package main is the entry point for the multirisk CLI.
package main

import (
	"os"

	"multirisk/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
