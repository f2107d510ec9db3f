// internal/cli/root.go

package cli

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"creatorpulse/internal/logging"
	insightService "creatorpulse/internal/service/insight"
)

// NewRootCmd builds the databrain command
func NewRootCmd() *cobra.Command {
	var (
		files    []string
		pretty   bool
		timezone string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "databrain",
		Short: "Analyze per-post analytics and print a recommendation report",
		Long: `Reads {"platforms": {...}} JSON from stdin, or platform export files given
with --files, and prints the recommendation report as JSON.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid timezone %q: %w", timezone, err)
			}

			// Trailing arguments are export files too
			files = append(files, args...)

			var input Input
			if len(files) > 0 {
				input = ReadFiles(files, cmd.ErrOrStderr())
			} else {
				input, err = ReadStdin(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			logger := logging.New(logging.Options{
				Level:  logLevel,
				Format: "text",
				Output: cmd.ErrOrStderr(),
			})

			engine := insightService.NewEngine(insightService.EngineConfig{
				Location: loc,
				Logger:   logging.ForService(logger, "databrain"),
			})
			report := engine.Analyze(input.Platforms)

			var out []byte
			if pretty {
				out, err = json.MarshalIndent(report, "", "  ")
			} else {
				out, err = json.Marshal(report)
			}
			if err != nil {
				return fmt.Errorf("error encoding report: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&files, "files", nil, "JSON export files to analyze instead of stdin")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "Timezone for schedule buckets and zone-less timestamps")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level for diagnostics on stderr")

	return cmd
}
