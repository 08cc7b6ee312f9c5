// Package proxy forwards booking-app requests to the Volkern CRM, attaching
// the API credential server-side. It is the only component that ever holds
// the credential; browser and client code only see the proxy surface.
package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

const defaultTimeout = 20 * time.Second

var keyAllowed = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// CleanAPIKey normalizes a configured credential: surrounding whitespace
// and quote characters are removed, then anything outside the key alphabet
// (Volkern keys are "vk_"-prefixed alphanumerics) is stripped. That catches
// hidden characters such as \r\n smuggled in through env files.
func CleanAPIKey(raw string) string {
	key := strings.TrimSpace(raw)
	key = strings.Trim(key, `"'`)
	key = strings.TrimSpace(key)
	return keyAllowed.ReplaceAllString(key, "")
}

// Handler proxies GET/POST/PATCH requests on a trailing path to the Volkern
// API, normalizing every upstream response into JSON:
//
//   - redirects (301/302/307/308) are not followed; they mean the key was
//     rejected and the API bounced us to a login page, so they become a 401
//     with the redirect target included for diagnostics
//   - JSON responses pass through with their original status
//   - non-JSON bodies are best-effort parsed, otherwise wrapped as
//     {"message": <raw text>}
//   - any forwarding fault becomes a structured 500, never a blank error
type Handler struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *Metrics
}

// New constructs the proxy. The credential is cleaned once here; if nothing
// survives cleaning, every request is answered with a configuration error
// and the upstream is never contacted.
func New(baseURL, apiKey string, metrics *Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  CleanAPIKey(apiKey),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.apiKey == "" {
		h.logger.Error("proxy: VOLKERN_API_KEY is missing or empty after cleaning")
		h.metrics.ObserveRequest(r.Method, OutcomeConfigError)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Server Configuration Error: Missing or Malformed API Key",
		})
		return
	}

	endpoint := h.baseURL + "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if r.URL.RawQuery != "" {
		endpoint += "?" + r.URL.RawQuery
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, endpoint, body)
	if err != nil {
		h.fault(w, r, err)
		return
	}
	req.Header.Set("X-API-Key", h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	h.logger.Info("proxy: forwarding", "method", r.Method, "url", endpoint)

	start := time.Now()
	resp, err := h.httpClient.Do(req)
	if err != nil {
		h.fault(w, r, err)
		return
	}
	defer resp.Body.Close()
	h.metrics.ObserveUpstreamLatency(r.Method, time.Since(start).Seconds())

	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		target := resp.Header.Get("Location")
		h.logger.Error("proxy: upstream redirected, treating as auth failure", "target", target)
		h.metrics.ObserveRequest(r.Method, OutcomeAuthRedirect)
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error":   "Authentication Redirect",
			"details": "The API redirected to a login page. Check your VOLKERN_API_KEY.",
			"target":  target,
		})
		return
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		h.fault(w, r, err)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if !json.Valid(respBody) {
			h.fault(w, r, errUnparseableJSON)
			return
		}
		h.metrics.ObserveRequest(r.Method, OutcomeOK)
		emitRaw(w, resp.StatusCode, respBody)
		return
	}

	// Non-JSON upstream body: some endpoints answer text/plain with a JSON
	// payload, so try to parse before wrapping the text.
	h.metrics.ObserveRequest(r.Method, OutcomeOK)
	if json.Valid(respBody) {
		emitRaw(w, resp.StatusCode, respBody)
		return
	}
	writeJSON(w, resp.StatusCode, map[string]string{"message": string(respBody)})
}

type proxyError string

func (e proxyError) Error() string { return string(e) }

const errUnparseableJSON = proxyError("upstream declared JSON but body is not parseable")

func (h *Handler) fault(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("proxy: forwarding failed", "method", r.Method, "error", err)
	h.metrics.ObserveRequest(r.Method, OutcomeUpstreamErr)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Proxy Internal Error",
		"message": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func emitRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
