package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/pestid/internal/http"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var health httpapi.HealthResponse
			if _, err := newClient(opts).getJSON(cmd.Context(), "/health", &health); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, health, func(w io.Writer) error {
				fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Status:"), health.Status)
				field(w, "Service", health.Service)
				field(w, "Version", health.Version)
				return nil
			})
		},
	}
}
