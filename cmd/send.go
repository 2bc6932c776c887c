package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hotlab/go-ghost/ghost"
	"github.com/hotlab/go-ghost/ghosttcp"
)

func newSendCmd() *cobra.Command {
	var noReply bool

	cmd := &cobra.Command{
		Use:   "send <command>...",
		Short: "Send a raw command to the GHOST server",
		Long:  "send transmits a command verbatim and prints the reply. Commands the server never acknowledges need --no-reply, otherwise the read runs into the reply timeout.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")

			return withSession(cmd, func(session *ghosttcp.Session) error {
				if noReply {
					return session.SendFireAndForget(ghost.Raw(text, false))
				}

				resp, err := session.SendRequest(ghost.Raw(text, true))
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.String())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&noReply, "no-reply", false, "do not wait for a reply")

	return cmd
}
