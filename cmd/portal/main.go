// Command portal serves the service-ordering web portal.
//
//	@title			Service Portal
//	@version		1.0
//	@description	Role-gated web portal for applicants and suppliers of the ordering API.
//	@BasePath		/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "portal",
	Short:         "Service-ordering portal for applicants and suppliers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newServeCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
