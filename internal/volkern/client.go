// Package volkern is a typed client for the Volkern scheduling CRM.
//
// All calls are routed through the credential proxy, so the client never
// sees the API key. Endpoint paths and payload shapes follow the CRM wire
// format.
package volkern

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// Client wraps REST calls against the Volkern API surface exposed by the
// proxy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient constructs a Volkern client pointed at the proxy base URL
// (e.g. "http://127.0.0.1:8080/api/volkern").
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// ListServices returns the active services offered for booking.
//
// This call never fails: on transport errors, non-2xx statuses, or an
// unrecognized payload shape it returns the static fallback list so the
// booking flow can always present something to the visitor. The remote
// list wins whenever it can be read.
func (c *Client) ListServices(ctx context.Context) []Service {
	raw, err := c.doRaw(ctx, http.MethodGet, "/servicios?activo=true", nil)
	if err != nil {
		c.logger.Warn("volkern: list services failed, using fallback", "error", err)
		return FallbackServices()
	}

	shape, services := classifyServiceList(raw)
	if shape == shapeUnrecognized {
		c.logger.Warn("volkern: unrecognized services payload, using fallback")
		return FallbackServices()
	}
	return services
}

// GetAvailability fetches the availability for one calendar date
// (YYYY-MM-DD). No caching: the CRM is the source of truth and can change
// between calls. Slot strings in the response are floating timestamps
// anchored to the tenant's business timezone.
func (c *Client) GetAvailability(ctx context.Context, fecha string, duracionMinutos int, timezone string) (*AvailabilityResponse, error) {
	q := url.Values{}
	q.Set("fecha", fecha)
	q.Set("duracion", strconv.Itoa(duracionMinutos))
	if timezone != "" {
		q.Set("timezone", timezone)
	}

	raw, err := c.doRaw(ctx, http.MethodGet, "/citas/disponibilidad?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("volkern: get availability: %w", err)
	}

	var resp AvailabilityResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("volkern: decode availability: %w", err)
	}
	return &resp, nil
}

// UpsertLead finds or creates the lead identified by its email.
//
// The CRM search is fuzzy (substring), so results are filtered to an exact
// case-insensitive email match before being accepted. A matched lead is
// returned unchanged even if other submitted fields differ; the CRM record
// is never updated here. Without a match, a create is issued and the
// response unwrapped. Calling twice with the same email creates at most
// one lead.
func (c *Client) UpsertLead(ctx context.Context, lead Lead) (*Lead, error) {
	email := strings.TrimSpace(lead.Email)
	if email == "" {
		return nil, fmt.Errorf("volkern: upsert lead: email required")
	}

	raw, err := c.doRaw(ctx, http.MethodGet, "/leads?query="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, fmt.Errorf("volkern: search lead: %w", err)
	}

	_, candidates := classifyLeadList(raw)
	for i := range candidates {
		if candidates[i].ID != "" && strings.EqualFold(strings.TrimSpace(candidates[i].Email), email) {
			return &candidates[i], nil
		}
	}

	raw, err = c.doRaw(ctx, http.MethodPost, "/leads", lead)
	if err != nil {
		return nil, fmt.Errorf("volkern: create lead: %w", err)
	}

	created := decodeCreatedLead(raw)
	if created == nil {
		return nil, fmt.Errorf("volkern: create lead: unrecognized response shape")
	}
	return created, nil
}

// CreateAppointment books a slot for an existing lead. The caller supplies
// a valid lead id and a slot value taken from GetAvailability.
func (c *Client) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	raw, err := c.doRaw(ctx, http.MethodPost, "/citas", appt)
	if err != nil {
		return nil, fmt.Errorf("volkern: create appointment: %w", err)
	}

	created := decodeCreatedAppointment(raw)
	if created == nil {
		return nil, fmt.Errorf("volkern: create appointment: unrecognized response shape")
	}
	return created, nil
}

// doRaw issues one request and returns the raw 2xx body. Non-2xx responses
// are turned into an error carrying the upstream "error" message when the
// body has one, or a status-derived message otherwise.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err == nil {
			if apiErr.Error != "" {
				return nil, fmt.Errorf("%s", apiErr.Error)
			}
			if apiErr.Message != "" {
				return nil, fmt.Errorf("%s", apiErr.Message)
			}
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return respBody, nil
}
