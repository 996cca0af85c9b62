package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rigconvert/internal/asset"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id|path>",
		Short: "Print one asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			id, err := resolveAsset(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			a, err := store.Load(cmd.Context(), id)
			if err != nil {
				return err
			}
			view := showView(a)
			if jsonOut {
				return writeJSON(cmd, view)
			}
			data, err := yaml.Marshal(view)
			if err != nil {
				return fmt.Errorf("encode asset: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", a.Kind().Label())
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the asset as JSON")
	return cmd
}

type textureView struct {
	asset.Meta `yaml:",inline"`
	Width      int `json:"width" yaml:"width"`
	Height     int `json:"height" yaml:"height"`
}

// showView drops pixel data from textures.
func showView(a asset.Asset) any {
	if tex, ok := a.(*asset.Texture); ok {
		return textureView{Meta: tex.Meta, Width: tex.Width, Height: tex.Height}
	}
	return a
}
