// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/venueshare/venueshare/internal/housing"
)

// NewZonesCmd creates the zones subcommand.
func NewZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones [zone-id...]",
		Short: "Show the zone table, or classify zone IDs against it",
		Long: `Without arguments, print the active zone table: each district with its
zones, instance zones and map offset. With zone IDs, print how each one
is classified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return printZoneTable(out, a.table)
			}

			classifier := housing.NewClassifier(a.table, a.logger)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ZONE\tDISTRICT\tCLASSIFICATION")
			for _, arg := range args {
				id, err := strconv.ParseUint(arg, 10, 32)
				if err != nil {
					return oops.With("zone_id", arg).Errorf("zone id must be a non-negative integer")
				}
				district, how := classifier.ClassifyDetail(housing.ZoneID(id))
				fmt.Fprintf(tw, "%d\t%s\t%s\n", id, orDash(string(district)), how)
			}
			return tw.Flush()
		},
	}
}

func printZoneTable(out io.Writer, table *housing.ZoneTable) error {
	byDistrict := map[housing.District][]string{}
	for _, id := range sortedZoneIDs(table.Zones) {
		d := table.Zones[id]
		byDistrict[d] = append(byDistrict[d], id.String())
	}
	for _, id := range sortedZoneIDs(table.Instances) {
		d := table.Zones[table.Instances[id]]
		byDistrict[d] = append(byDistrict[d], id.String()+"*")
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DISTRICT\tZONES\tMAP OFFSET")
	for _, d := range table.Districts {
		offset := "-"
		if mo, ok := table.MapOffsetFor(d); ok {
			offset = fmt.Sprintf("%d mod %d", mo.Offset, mo.Modulus)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d, orDash(strings.Join(byDistrict[d], " ")), offset)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out, "* instance zone")
	if r := table.LikelyInstance; r != nil {
		fmt.Fprintf(out, "likely instances: %s-%s (%d attributions)\n", r.Min, r.Max, len(r.Attributions))
	}
	return nil
}

func sortedZoneIDs[V any](m map[housing.ZoneID]V) []housing.ZoneID {
	ids := make([]housing.ZoneID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
