// Package main is the entry point of the TeamAI API server.
package main

import (
	"fmt"
	"os"

	// server.timezone must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
