package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/ghosttcp"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the GHOST status report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(session *ghosttcp.Session) error {
				resp, err := session.SendRequest(ghost.Status())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if report, ok := ghost.ParseStatus(resp); ok {
					state := "acquiring"
					if report.Idle {
						state = "idle"
					}
					if _, err := fmt.Fprintf(out, "state: %s\n\n", state); err != nil {
						return err
					}
				}

				_, err = fmt.Fprintln(out, resp.String())
				return err
			})
		},
	}
}
