package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "glazier",
	Short: "Work orders and pricing for glass installation jobs",
	Long: `glazier runs the work-order API and prices orders, including the labor
tax deduction (ROT).

Run "glazier serve" to start the HTTP API, "glazier migrate" to bring the
database schema up to date, "glazier seed" to create a starter catalog, or
"glazier quote" to price an order file offline.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
