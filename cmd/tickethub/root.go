// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TicketHub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tickethub",
		Short: "TicketHub - a multi-user ticketing backend",
		Long: `TicketHub is a ticketing backend with token-based sessions,
workflow states, and a REST API.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
