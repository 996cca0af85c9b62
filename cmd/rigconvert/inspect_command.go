package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rigconvert/internal/asset"
	"rigconvert/internal/pipeline"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "inspect <rig>",
		Short: "Show what a conversion would convert and pass through",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			rigID, err := resolveAsset(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			disc, err := pipeline.Discover(cmd.Context(), store, rigID, pipeline.OptionsFromConfig(cfg))
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, disc.Plan)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rig: %s\n", asset.Describe(disc.Rig))
			rows := make([][]string, 0, len(disc.Plan))
			for _, d := range disc.Plan {
				action := "pass"
				if d.Convert {
					action = "convert"
				}
				name := d.Name
				if d.Kind == asset.KindMaterial && disc.MaterialOrigin[d.ID] == pipeline.FromAnimation {
					name += " (animation only)"
				}
				rows = append(rows, []string{d.Kind.Label(), name, d.ID.Short(), action, d.Reason})
			}
			fmt.Fprintln(out, renderTable([]string{"Kind", "Name", "ID", "Action", "Reason"}, rows, nil))
			fmt.Fprintf(out, "Will convert %d materials, %d clips, %d blend trees, %d controllers\n",
				disc.Converting(asset.KindMaterial),
				disc.Converting(asset.KindClip),
				disc.Converting(asset.KindBlendTree),
				disc.Converting(asset.KindController),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the plan as JSON")
	return cmd
}
