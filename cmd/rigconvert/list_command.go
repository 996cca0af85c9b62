package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rigconvert/internal/asset"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var prefix string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List assets in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind asset.Kind
			if strings.TrimSpace(kindFlag) != "" {
				parsed, err := asset.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kind = parsed
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			entries, err := store.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if prefix = strings.Trim(strings.TrimSpace(prefix), "/"); prefix != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.Path == prefix || strings.HasPrefix(e.Path, prefix+"/") {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if jsonOut {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No assets found")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID.Short(), e.Kind.Label(), e.Name, e.Path})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Kind", "Name", "Path"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Only list assets of this kind")
	cmd.Flags().StringVar(&prefix, "under", "", "Only list assets under this store directory")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print entries as JSON")
	return cmd
}
