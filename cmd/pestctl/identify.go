package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	httpapi "github.com/fyrsmithlabs/pestid/internal/http"
	"github.com/fyrsmithlabs/pestid/internal/identify"
)

func newIdentifyCmd(opts *options) *cobra.Command {
	var country string

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify a pest or disease in a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, contentType, err := multipartImage(args[0], country)
			if err != nil {
				return err
			}

			var result identify.Result
			_, err = newClient(opts).do(cmd.Context(), http.MethodPost, "/api/v1/identify", body, contentType, &result)
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
				return render(cmd.OutOrStdout(), opts, httpapi.ErrorResponse{Error: "no_disease_found"}, func(w io.Writer) error {
					fmt.Fprintln(w, dimStyle.Render("No pest or disease detected in this image."))
					return nil
				})
			}
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts, result, func(w io.Writer) error {
				printResult(w, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&country, "country", "", "country used to tailor product recommendations")
	return cmd
}

// multipartImage builds an upload with the file under the "image" field.
func multipartImage(path, country string) (*bytes.Buffer, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if country != "" {
		if err := mw.WriteField("country", country); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func printResult(w io.Writer, r identify.Result) {
	level := string(r.ThreatLevel)
	fmt.Fprintf(w, "%s  %s\n", headingStyle.Render(r.Name), threatStyle(level).Render(strings.ToUpper(level)))
	field(w, "Type", string(r.Type))
	field(w, "Confidence", fmt.Sprintf("%.0f%%", r.Confidence))
	field(w, "Description", r.Description)
	if len(r.AffectedPlants) > 0 {
		field(w, "Affects", strings.Join(r.AffectedPlants, ", "))
	}
	if len(r.Symptoms) > 0 {
		field(w, "Symptoms", strings.Join(r.Symptoms, "; "))
	}

	for _, m := range r.ControlMethods {
		fmt.Fprintf(w, "\n%s\n", labelStyle.Render(m.Method))
		if m.Description != "" {
			fmt.Fprintln(w, m.Description)
		}
		if len(m.Products) == 0 {
			continue
		}
		t := newTable("Product", "Active ingredient", "Rate", "Safe days")
		for _, p := range m.Products {
			t.Row(p.BrandName, p.ActiveIngredient, p.ApplicationRate, string(p.SafeDays))
		}
		fmt.Fprintln(w, t.Render())
	}
}
