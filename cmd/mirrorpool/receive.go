package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/mirrorpool/pkg/mirror"
)

// newReceiveCmd is the hidden child half of the process-backed
// receiver: it reads result messages from stdin and writes the
// aggregated collection to stdout. Users never invoke it directly.
func newReceiveCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:    mirror.ReceiveChildCommand,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mirror.ReceiveChild(os.Stdin, os.Stdout, os.Stderr, dest)
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "destination root for relativizing results")
	_ = cmd.MarkFlagRequired("dest")
	return cmd
}
