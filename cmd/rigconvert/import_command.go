package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rigconvert/internal/bundle"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "import <bundle.yaml>",
		Short: "Import a YAML rig bundle into the asset store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}
			return ctx.withWriteLock(func() error {
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer closeQuietly(store)

				imported, err := bundle.Import(cmd.Context(), store, args[0], logger)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, imported)
				}
				rows := make([][]string, 0, len(imported))
				for _, entry := range imported {
					rows = append(rows, []string{entry.Kind.Label(), entry.Name, string(entry.ID), entry.Path})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable([]string{"Kind", "Name", "ID", "Path"}, rows, nil))
				fmt.Fprintf(out, "Imported %d assets\n", len(imported))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print imported assets as JSON")
	return cmd
}
