// Command churnportal serves the employee churn portal and offers a batch
// prediction shortcut for spreadsheets.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "churnportal",
	Short:        "Employee churn prediction portal",
	Long:         "churnportal is a server-rendered front end for an employee churn prediction API: single and department batch predictions behind a login.",
	SilenceUsage: true,
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
