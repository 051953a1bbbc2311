// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the MediaHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediahub",
		Short: "MediaHub - accounts, comments and likes for shared media",
		Long: `MediaHub serves registration, login and password reset for user
accounts, and ownership-checked comments and likes on media items.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}
