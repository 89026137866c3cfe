package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipper/internal/captions"
	"clipper/internal/clip"
)

func newPresetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "presets",
		Short:       "List caption presets and output aspects",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			presetRows := make([][]string, 0, len(clip.Presets()))
			for _, preset := range clip.Presets() {
				style, ok := captions.StyleFor(preset)
				if !ok {
					presetRows = append(presetRows, []string{string(preset), "-", "-", "no captions"})
					continue
				}
				presetRows = append(presetRows, []string{
					string(preset),
					style.Font,
					fmt.Sprintf("%d", style.Size),
					string(style.Position),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Preset", "Font", "Size", "Position"},
				presetRows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))

			aspectRows := make([][]string, 0, len(clip.Aspects()))
			for _, aspect := range clip.Aspects() {
				w, h := aspect.Ratio()
				outW, outH := aspect.Resolution()
				aspectRows = append(aspectRows, []string{
					string(aspect),
					fmt.Sprintf("%d:%d", w, h),
					fmt.Sprintf("%dx%d", outW, outH),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Aspect", "Ratio", "Output"},
				aspectRows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}
