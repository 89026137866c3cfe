package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipper/internal/deps"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)

			statuses := deps.CheckBinaries(deps.FromConfig(cfg))
			missing := 0
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := colorize("ok", ansiGreen, color)
				detail := status.Description
				if !status.Available {
					if status.Optional {
						state = colorize("missing (optional)", ansiYellow, color)
					} else {
						state = colorize("missing", ansiRed, color)
						missing++
					}
					detail = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Tool", "Command", "State", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}))

			if missing > 0 {
				return fmt.Errorf("%d required tools missing", missing)
			}
			return nil
		},
	}
}
