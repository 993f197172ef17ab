// Package main is the gymstats command line: analytics reports and demo data
// seeding against the configured record store.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	rootCmd, app := newRootCmd()
	err := rootCmd.Execute()
	if closeErr := app.close(); closeErr != nil {
		log.Errorf("close backends: %s", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
