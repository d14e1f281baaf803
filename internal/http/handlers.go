package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/pestid/internal/chat"
	"github.com/fyrsmithlabs/pestid/internal/identify"
	"github.com/fyrsmithlabs/pestid/internal/location"
	"github.com/fyrsmithlabs/pestid/internal/logging"
	"github.com/fyrsmithlabs/pestid/internal/tracking"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// handleIdentify accepts a JSON body or a multipart upload with an "image"
// file field.
func (s *Server) handleIdentify(c echo.Context) error {
	img, country, err := readIdentifyRequest(c)
	if err != nil {
		return err
	}

	ctx := logging.WithCountry(c.Request().Context(), country)
	result, err := s.deps.Identify.Identify(ctx, img, identify.Options{Country: country})
	switch {
	case errors.Is(err, identify.ErrNoDiseaseFound):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "no_disease_found"})
	case errors.Is(err, identify.ErrParse):
		return echo.NewHTTPError(http.StatusBadGateway, "could not parse identification response")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadGateway, "identification failed")
	}

	return c.JSON(http.StatusOK, result)
}

func readIdentifyRequest(c echo.Context) (identify.Image, string, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		fh, err := c.FormFile("image")
		if err != nil {
			return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, "image file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, "could not read image file")
		}

		// Browsers label unknown files application/octet-stream; sniff those.
		declared := fh.Header.Get(echo.HeaderContentType)
		if !strings.HasPrefix(declared, "image/") {
			declared = ""
		}

		img, err := identify.FromBytes(data, declared)
		if err != nil {
			return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return img, strings.TrimSpace(c.FormValue("country")), nil
	}

	var req IdentifyRequest
	if err := c.Bind(&req); err != nil {
		return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Image) == "" {
		return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, "image field is required")
	}

	payload := req.Image
	if req.MIMEType != "" && !strings.Contains(payload, ",") {
		payload = "data:" + req.MIMEType + ";base64," + payload
	}

	img, err := identify.ParseImage(payload)
	if err != nil {
		return identify.Image{}, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return img, strings.TrimSpace(req.Country), nil
}

func (s *Server) handleCreateTracking(c echo.Context) error {
	var req TrackingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be RFC 3339 or YYYY-MM-DD")
	}

	ctx := c.Request().Context()
	id, err := s.deps.Tracking.Create(ctx, tracking.Entry{
		Date:           date,
		PestName:       req.PestName,
		Location:       req.Location,
		AffectedPlants: req.AffectedPlants,
		TreatmentPlan:  req.TreatmentPlan,
		Notes:          req.Notes,
	})
	switch {
	case errors.Is(err, tracking.ErrInvalidEntry):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error(ctx, "create tracking entry failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save tracking entry")
	}

	return c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

// handleListTracking lists all entries, or searches when q is set.
func (s *Server) handleListTracking(c echo.Context) error {
	ctx := c.Request().Context()
	entries, err := s.deps.Tracking.Search(ctx, strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		s.logger.Error(ctx, "list tracking entries failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load tracking entries")
	}
	return c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetTracking(c echo.Context) error {
	ctx := c.Request().Context()
	entry, err := s.deps.Tracking.Get(ctx, c.Param("id"))
	switch {
	case errors.Is(err, tracking.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "tracking entry not found")
	case err != nil:
		s.logger.Error(ctx, "get tracking entry failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load tracking entry")
	}
	return c.JSON(http.StatusOK, entry)
}

func (s *Server) handleChat(c echo.Context) error {
	var req chat.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	if req.Location != nil {
		ctx = logging.WithCountry(ctx, req.Location.Country)
	}

	reply, err := s.deps.Chat.Reply(ctx, req)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		s.logger.Error(ctx, "chat reply failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "chat failed")
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) handleLocation(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Location.Lookup(c.Request().Context(), c.RealIP()))
}

func (s *Server) handleSelectLocation(c echo.Context) error {
	var req SelectLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	info, err := location.Select(req.Country)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleCountries(c echo.Context) error {
	return c.JSON(http.StatusOK, CountriesResponse{Countries: location.Countries()})
}

// parseDate accepts RFC 3339 timestamps and plain dates. Empty yields the
// zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
