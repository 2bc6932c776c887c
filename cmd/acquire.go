package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hotlab/go-ghost/brillouin"
)

func newAcquireCmd() *cobra.Command {
	var (
		cycles int
		out    string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Run one timed acquisition and save the spectrum",
		Long:  "acquire takes remote control of the GHOST server, clears the acquisition buffer, measures the requested number of cycles and saves the spectrum under the given filename in the server's working directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSpectrometer(cmd, func(tfp *brillouin.Spectrometer) error {
				if dir != "" {
					if err := tfp.SetWorkingDirectory(dir); err != nil {
						return fmt.Errorf("set working directory: %w", err)
					}
				}

				begin := time.Now()
				if err := tfp.AcquireAndSave(cmd.Context(), cycles, out); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s after %d cycles in %s\n",
					out, cycles, time.Since(begin).Round(time.Millisecond))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&cycles, "cycles", 100, "number of measurement cycles")
	cmd.Flags().StringVar(&out, "out", "", "filename for the saved spectrum (required)")
	cmd.Flags().StringVar(&dir, "dir", "", "server-side working directory for the run")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
