package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"rigconvert/internal/bundle"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <rig>",
		Short: "Export a rig and everything it references as a YAML bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(outDir) == "" {
				return fmt.Errorf("--out is required")
			}
			logger, err := ctx.logger(cmd)
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
			doc, err := bundle.Export(cmd.Context(), store, rigID, outDir, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d textures, %d materials, %d clips, %d blend trees, %d controllers)\n",
				filepath.Join(outDir, bundle.DocumentName),
				len(doc.Textures), len(doc.Materials), len(doc.Clips), len(doc.BlendTrees), len(doc.Controllers))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to write the bundle into")
	return cmd
}
