package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clipper/internal/captions"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "analyze <transcript.srt>",
		Short: "Find clip-worthy segments in a transcript",
		Long: `Analyze sends the transcript to the configured LLM and writes the
suggested segments as JSON. Edit the file before feeding it to
'clipper run --segments' to curate which clips get rendered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cues, err := captions.ReadSRT(args[0])
			if err != nil {
				return fmt.Errorf("read transcript: %w", err)
			}
			if len(cues) == 0 {
				return fmt.Errorf("transcript %s has no cues", args[0])
			}

			client, err := newAnalyzeClient(cfg)
			if err != nil {
				return err
			}
			doc, err := client.AnalyzeCues(cmd.Context(), cues)
			if err != nil {
				return fmt.Errorf("analyze transcript: %w", err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = "segments.json"
			}
			if err := doc.WriteFile(target); err != nil {
				return fmt.Errorf("write segments: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %d segments to %s\n", len(doc.Clips), target)

			rows := make([][]string, 0, len(doc.Clips))
			for _, segment := range doc.Clips {
				rows = append(rows, []string{
					fmt.Sprintf("%d", segment.ID),
					segment.SuggestedTitle,
					segment.TimestampStart,
					segment.TimestampEnd,
					fmt.Sprintf("%.1f", segment.ViralScore),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Start", "End", "Score"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "segments.json", "Destination for the segments JSON file")
	return cmd
}
