// Package main provides the lepidoptera CLI, a thin surface over the
// work-item store: projects, work item types, items, and relationships.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
