package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/ghosttcp"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print GHOST version and hardware details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(session *ghosttcp.Session) error {
				resp, err := session.SendRequest(ghost.SystemInfo())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()

				info := ghost.ParseInfo(resp)
				if len(info) == 0 {
					_, err := fmt.Fprintln(out, resp.String())
					return err
				}

				for _, key := range slices.Sorted(maps.Keys(info)) {
					if _, err := fmt.Fprintf(out, "%-20s %s\n", key, info[key]); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}
