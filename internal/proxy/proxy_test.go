package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dimensionexpert/volkern-booking/pkg/logging"
)

// mount wires the proxy under /api/volkern/* the way the app router does.
func mount(t *testing.T, h *Handler) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/api/volkern/*", h)
	r.Method(http.MethodPost, "/api/volkern/*", h)
	r.Method(http.MethodPatch, "/api/volkern/*", h)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func newProxy(t *testing.T, upstream http.HandlerFunc, apiKey string) (*Handler, *httptest.Server) {
	t.Helper()
	up := httptest.NewServer(upstream)
	t.Cleanup(up.Close)
	h := New(up.URL, apiKey, NewMetrics(prometheus.NewRegistry()), logging.Default())
	return h, up
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("body is not JSON: %v (%s)", err, raw)
	}
	return resp.StatusCode, body
}

func TestCleanAPIKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"vk_prod_abc123", "vk_prod_abc123"},
		{"  vk_prod_abc123  ", "vk_prod_abc123"},
		{`"vk_prod_abc123"`, "vk_prod_abc123"},
		{`'vk_prod_abc123'`, "vk_prod_abc123"},
		{"vk_prod_abc123\r\n", "vk_prod_abc123"},
		{"vk_prod_abc-123_x", "vk_prod_abc-123_x"},
		{"vk prod abc", "vkprodabc"},
		{`""`, ""},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanAPIKey(tc.in); got != tc.want {
			t.Errorf("CleanAPIKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestProxy_ForwardsPathQueryAndCredential(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/servicios" {
			t.Fatalf("upstream path = %s", r.URL.Path)
		}
		if r.URL.RawQuery != "activo=true" {
			t.Fatalf("upstream query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("X-API-Key") != "vk_prod_secret" {
			t.Fatalf("X-API-Key = %q", r.Header.Get("X-API-Key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"svc-1"}]`))
	}, `"vk_prod_secret"`)
	ts := mount(t, h)

	resp, err := http.Get(ts.URL + "/api/volkern/servicios?activo=true")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if got := strings.TrimSpace(string(raw)); got != `[{"id":"svc-1"}]` {
		t.Fatalf("body = %s", got)
	}
}

func TestProxy_PassesThroughRequestBody(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"email":"a@x.com"}` {
			t.Fatalf("upstream body = %s", raw)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"lead-1"}`))
	}, "vk_prod_secret")
	ts := mount(t, h)

	resp, err := http.Post(ts.URL+"/api/volkern/leads", "application/json", strings.NewReader(`{"email":"a@x.com"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 passthrough", resp.StatusCode)
	}
}

func TestProxy_RedirectBecomesAuthError(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/login")
		w.WriteHeader(http.StatusFound)
	}, "vk_prod_secret")
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if body["error"] != "Authentication Redirect" {
		t.Fatalf("error = %v", body["error"])
	}
	if body["target"] != "/login" {
		t.Fatalf("target = %v, want /login", body["target"])
	}
}

func TestProxy_RedirectStatuses(t *testing.T) {
	for _, upstreamStatus := range []int{301, 302, 307, 308} {
		h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Location", "https://volkern.app/login")
			w.WriteHeader(upstreamStatus)
		}, "vk_prod_secret")
		ts := mount(t, h)

		status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
		if status != http.StatusUnauthorized {
			t.Errorf("upstream %d: status = %d, want 401", upstreamStatus, status)
		}
		if body["target"] != "https://volkern.app/login" {
			t.Errorf("upstream %d: target = %v", upstreamStatus, body["target"])
		}
	}
}

func TestProxy_JSONStatusPreserved(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"lead not found"}`))
	}, "vk_prod_secret")
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/leads/nope")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 preserved", status)
	}
	if body["error"] != "lead not found" {
		t.Fatalf("body = %v", body)
	}
}

func TestProxy_NonJSONTextIsWrapped(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}, "vk_prod_secret")
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
	if status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want upstream 503", status)
	}
	if body["message"] != "<html>maintenance</html>" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestProxy_NonJSONContentTypeWithJSONBody(t *testing.T) {
	// Some endpoints answer text/plain with a JSON payload; parse before wrapping.
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, "vk_prod_secret")
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/ping")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["ok"] != true {
		t.Fatalf("body = %v, want parsed JSON", body)
	}
}

func TestProxy_EmptyCredentialShortCircuits(t *testing.T) {
	var upstreamCalls int32
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
	}, `"' '"`) // nothing survives cleaning
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["error"] != "Server Configuration Error: Missing or Malformed API Key" {
		t.Fatalf("error = %v", body["error"])
	}
	if atomic.LoadInt32(&upstreamCalls) != 0 {
		t.Fatal("upstream was called despite missing credential")
	}
}

func TestProxy_UpstreamUnreachableIsStructured500(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	up.Close() // force a connection error
	h := New(up.URL, "vk_prod_secret", NewMetrics(prometheus.NewRegistry()), logging.Default())
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["error"] != "Proxy Internal Error" {
		t.Fatalf("error = %v", body["error"])
	}
	if body["message"] == "" {
		t.Fatal("expected a diagnostic message")
	}
}

func TestProxy_DeclaredJSONButUnparseable(t *testing.T) {
	h, _ := newProxy(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"broken":`))
	}, "vk_prod_secret")
	ts := mount(t, h)

	status, body := getJSON(t, ts.URL+"/api/volkern/servicios")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["error"] != "Proxy Internal Error" {
		t.Fatalf("error = %v", body["error"])
	}
}
