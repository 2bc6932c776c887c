// Package cmd implements the ghostctl command line interface.
package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ghostctl",
		Short:         "Control a Brillouin spectrometer through its GHOST server",
		Long:          "ghostctl drives the GHOST control software of a TFP Brillouin spectrometer over its TCP command interface: query status and system information, send raw commands and run complete timed acquisitions.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	registerRootFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newStatusCmd(),
		newInfoCmd(),
		newSendCmd(),
		newAcquireCmd(),
	)

	return rootCmd
}
