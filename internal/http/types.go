package http

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

// ErrorResponse is returned for domain outcomes that are not transport
// errors, such as an image with nothing to identify.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IdentifyRequest is the JSON body for POST /api/v1/identify. Image is a
// data URL or bare base64; MIMEType applies to bare base64.
type IdentifyRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mime_type,omitempty"`
	Country  string `json:"country,omitempty"`
}

// TrackingRequest is the body for POST /api/v1/tracking. Date accepts
// RFC 3339 or YYYY-MM-DD and defaults to now.
type TrackingRequest struct {
	Date           string `json:"date,omitempty"`
	PestName       string `json:"pestName"`
	Location       string `json:"location"`
	AffectedPlants string `json:"affectedPlants"`
	TreatmentPlan  string `json:"treatmentPlan"`
	Notes          string `json:"notes,omitempty"`
}

// CreatedResponse is returned by POST /api/v1/tracking.
type CreatedResponse struct {
	ID string `json:"id"`
}

// SelectLocationRequest is the body for POST /api/v1/location.
type SelectLocationRequest struct {
	Country string `json:"country"`
}

// CountriesResponse is returned by GET /api/v1/location/countries.
type CountriesResponse struct {
	Countries []string `json:"countries"`
}
