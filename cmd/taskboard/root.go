package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const (
	apiURLEnv     = "TASKBOARD_API_URL"
	defaultAPIURL = "http://127.0.0.1:3000"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var apiURLFlag string
	var noColorFlag bool

	ctx := newCommandContext(&configFlag, &apiURLFlag, &noColorFlag)

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Task tracking server and CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", apiURLDefault(), "Base URL of the taskboard API (env "+apiURLEnv+")")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newTasksCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))

	return rootCmd
}

func apiURLDefault() string {
	if v := strings.TrimSpace(os.Getenv(apiURLEnv)); v != "" {
		return v
	}
	return defaultAPIURL
}
