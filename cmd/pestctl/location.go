package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/pestid/internal/http"
	"github.com/fyrsmithlabs/pestid/internal/location"
)

func newLocationCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show the server's detected location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var info location.Info
			if _, err := newClient(opts).getJSON(cmd.Context(), "/api/v1/location", &info); err != nil {
				return err
			}
			return renderLocation(cmd.OutOrStdout(), opts, info)
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "countries",
			Short: "List countries available for manual selection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				var resp httpapi.CountriesResponse
				if _, err := newClient(opts).getJSON(cmd.Context(), "/api/v1/location/countries", &resp); err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts, resp, func(w io.Writer) error {
					for _, c := range resp.Countries {
						fmt.Fprintln(w, c)
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "select <country>",
			Short: "Validate a manually chosen country",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var info location.Info
				req := httpapi.SelectLocationRequest{Country: args[0]}
				if _, err := newClient(opts).postJSON(cmd.Context(), "/api/v1/location", req, &info); err != nil {
					return err
				}
				return renderLocation(cmd.OutOrStdout(), opts, info)
			},
		},
	)
	return cmd
}

func renderLocation(w io.Writer, opts *options, info location.Info) error {
	return render(w, opts, info, func(w io.Writer) error {
		field(w, "Country", info.Country)
		field(w, "Region", info.Region)
		field(w, "City", info.City)
		return nil
	})
}
