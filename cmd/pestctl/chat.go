package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pestid/internal/chat"
	"github.com/fyrsmithlabs/pestid/internal/location"
)

func newChatCmd(opts *options) *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Ask the farming assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := chat.Request{Message: strings.Join(args, " ")}
			if country != "" {
				req.Location = &location.Info{Country: country, Region: location.Unknown, City: location.Unknown}
			}

			var reply chat.Reply
			status, err := newClient(opts).postJSON(cmd.Context(), "/api/v1/chat", req, &reply)
			if err != nil {
				return err
			}
			if status == http.StatusNoContent {
				return nil
			}
			return render(cmd.OutOrStdout(), opts, reply, func(w io.Writer) error {
				if reply.Fallback {
					fmt.Fprintln(w, dimStyle.Render(reply.Reply))
					return nil
				}
				fmt.Fprintln(w, reply.Reply)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "country to mention to the assistant")
	return cmd
}
