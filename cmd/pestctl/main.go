// Package main implements pestctl, a command-line client for the pestid API.
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

// version information
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the global flags shared by every command.
type options struct {
	server  string
	json    bool
	yaml    bool
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pestctl",
		Short: "CLI for the pestid garden pest identifier",
		Long: `pestctl talks to a running pestid server. It identifies pests and
diseases in photos, records treatments, and asks the farming assistant
questions.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8088", "pestid server URL")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print raw JSON")
	root.PersistentFlags().BoolVar(&opts.yaml, "yaml", false, "print YAML")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 90*time.Second, "request timeout")
	root.MarkFlagsMutuallyExclusive("json", "yaml")

	root.AddCommand(
		newHealthCmd(opts),
		newIdentifyCmd(opts),
		newTrackCmd(opts),
		newChatCmd(opts),
		newLocationCmd(opts),
	)
	return root
}
