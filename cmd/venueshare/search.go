// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/venue"
)

// NewSearchCmd creates the search subcommand.
func NewSearchCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List directory venues at the current housing location",
		Long: `Resolve the location in the world-state snapshot and list the venues
the public directory has there. --name narrows the list with a glob such
as "*cafe*".`,
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

			// The directory may ignore the location query, so match locally too.
			here := venue.Match(a.newClient().QueryDirectory(cmd.Context(), loc), venue.NewLocationPayload(loc))
			venues, err := venue.FilterByName(here, name)
			if err != nil {
				return err
			}
			if len(venues) == 0 {
				fmt.Fprintf(out, "no venues found at %s\n", loc)
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLOCATION\tTAGS")
			for _, v := range venues {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Name, venueLocation(v.Location), strings.Join(v.Tags, ", "))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "glob filter on venue names")
	cmd.Flags().String("directory-url", "", "venue directory base URL")
	return cmd
}

func venueLocation(l venue.VenueLocation) string {
	return fmt.Sprintf("%s %s Ward %d, Plot %d", l.World, l.District, l.Ward, l.Plot)
}
