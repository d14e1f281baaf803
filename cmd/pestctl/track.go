package main

import (
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/pestid/internal/http"
	"github.com/fyrsmithlabs/pestid/internal/tracking"
)

func newTrackCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Record and browse treatment entries",
	}
	cmd.AddCommand(
		newTrackAddCmd(opts),
		newTrackListCmd(opts),
		newTrackSearchCmd(opts),
		newTrackGetCmd(opts),
	)
	return cmd
}

func newTrackAddCmd(opts *options) *cobra.Command {
	var req httpapi.TrackingRequest

	cmd := &cobra.Command{
		Use:   "add <pest name>",
		Short: "Record a treatment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.PestName = args[0]

			var created httpapi.CreatedResponse
			if _, err := newClient(opts).postJSON(cmd.Context(), "/api/v1/tracking", req, &created); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, created, func(w io.Writer) error {
				fmt.Fprintf(w, "%s %s\n", headingStyle.Render("Recorded"), created.ID)
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Date, "date", "", "treatment date (YYYY-MM-DD or RFC 3339, default now)")
	f.StringVar(&req.Location, "location", "", "where in the garden")
	f.StringVar(&req.AffectedPlants, "plants", "", "affected plants")
	f.StringVar(&req.TreatmentPlan, "plan", "", "treatment applied")
	f.StringVar(&req.Notes, "notes", "", "free-form notes")
	return cmd
}

func newTrackListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listEntries(cmd, opts, "")
		},
	}
}

func newTrackSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find entries whose pest name starts with term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listEntries(cmd, opts, args[0])
		},
	}
}

func newTrackGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var entry tracking.Entry
			path := "/api/v1/tracking/" + url.PathEscape(args[0])
			if _, err := newClient(opts).getJSON(cmd.Context(), path, &entry); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, entry, func(w io.Writer) error {
				fmt.Fprintln(w, headingStyle.Render(entry.PestName))
				field(w, "ID", entry.ID)
				field(w, "Date", entry.Date.Format(time.DateOnly))
				field(w, "Location", entry.Location)
				field(w, "Plants", entry.AffectedPlants)
				field(w, "Treatment", entry.TreatmentPlan)
				field(w, "Notes", entry.Notes)
				return nil
			})
		},
	}
}

func listEntries(cmd *cobra.Command, opts *options, term string) error {
	path := "/api/v1/tracking"
	if term != "" {
		path += "?q=" + url.QueryEscape(term)
	}

	var entries []tracking.Entry
	if _, err := newClient(opts).getJSON(cmd.Context(), path, &entries); err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), opts, entries, func(w io.Writer) error {
		if len(entries) == 0 {
			fmt.Fprintln(w, dimStyle.Render("No tracking entries."))
			return nil
		}
		t := newTable("Date", "Pest", "Location", "Plants", "Treatment")
		for _, e := range entries {
			t.Row(e.Date.Format(time.DateOnly), e.PestName, e.Location, e.AffectedPlants, e.TreatmentPlan)
		}
		fmt.Fprintln(w, t.Render())
		return nil
	})
}
