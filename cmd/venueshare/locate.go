// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/venue"
)

const msgNotInDistrict = "not in a housing district"

// NewLocateCmd creates the locate subcommand.
func NewLocateCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Print the housing location in the world-state snapshot",
		Long: `Resolve the ward and plot for the world-state snapshot and print it.
Resolution tries the game's own housing indices first, then the map
identifier, the on-screen label and finally the player position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			loc, _, ok, err := a.resolve()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, msgNotInDistrict)
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(venue.NewLocationPayload(loc))
			}
			fmt.Fprintln(out, loc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the location as a share payload")
	return cmd
}

// NewShareCmd creates the share subcommand.
func NewShareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share the current housing location with the notification endpoint",
		Long: `Resolve the location in the world-state snapshot and send it once to
the configured notification endpoint. Delivery failures are reported as a
warning and do not fail the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			loc, world, ok, err := a.resolve()
			if err != nil {
				return err
			}
			if !ok {
				cmd.PrintErrln("warning: " + msgNotInDistrict + ", nothing to share")
				return nil
			}
			a.share(cmd.Context(), cmd, a.newClient(), loc, world.PlayerName())
			return nil
		},
	}

	addShareFlags(cmd)
	return cmd
}

// addShareFlags registers the notification endpoint flags on cmd.
func addShareFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "notification endpoint base URL")
	cmd.Flags().String("channel", "", "destination channel id")
	cmd.Flags().String("token", "", "bearer token for the notification endpoint")
	cmd.Flags().Duration("timeout", 0, "request timeout")
}
