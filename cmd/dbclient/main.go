package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbtxn/pkg/clog"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dbclient",
	Short: "dbclient drives a single transaction-manager operation against a server",
	Long: `dbclient is a thin command-line binding over pkg/session: each
invocation opens one session against the profile's server, performs one
transaction-manager operation, and reports the resulting state.`,
}

func init() {
	rootCmd.PersistentFlags().String("config", "dbclient.yaml", "connection profile file")
	rootCmd.PersistentFlags().String("profile", "", "profile name (defaults to the config's default profile)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit structured JSON logs instead of console output")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(isolationCmd)
	rootCmd.AddCommand(lockwaitCmd)
	rootCmd.AddCommand(asyncwsCmd)
	rootCmd.AddCommand(savepointCmd)
	rootCmd.AddCommand(partialAbortCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(changemodeCmd)
	rootCmd.AddCommand(objectCreateCmd)
	rootCmd.AddCommand(objectUpdateCmd)
	rootCmd.AddCommand(objectFlushCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	clog.Init(clog.Config{Level: level, JSON: jsonOut})
}
