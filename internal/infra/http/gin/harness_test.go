package ginserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"churnportal/internal/app/forms"
	authsvc "churnportal/internal/app/services/auth"
	"churnportal/internal/app/services/prediction"
	"churnportal/internal/app/services/reports"
	domainauth "churnportal/internal/domain/auth"
	"churnportal/internal/domain/employee"
	"churnportal/internal/infra/churnapi"
	"churnportal/internal/infra/config"
	"churnportal/internal/infra/obs"
	"churnportal/internal/infra/security"
	"churnportal/internal/infra/spreadsheet"
	"churnportal/internal/infra/storage/memory"
)

// fakeAPI plays the external login and prediction service.
type fakeAPI struct {
	mu           sync.Mutex
	srv          *httptest.Server
	singleBodies []map[string]any
	batchBodies  [][]map[string]any
	label        string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{label: employee.LabelWillLeave}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] == "hr_admin" && body["password"] == "secret" {
			writeJSON(w, http.StatusOK, map[string]any{"token": "abc123"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.singleBodies = append(api.singleBodies, body)
		label := api.label
		api.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"prediction": label})
	})
	mux.HandleFunc("/predict-batch", func(w http.ResponseWriter, r *http.Request) {
		var body []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.mu.Lock()
		api.batchBodies = append(api.batchBodies, body)
		api.mu.Unlock()

		predictions := make([]string, len(body))
		leave := 0
		for i := range body {
			predictions[i] = employee.LabelWillStay
			if i == 1 {
				predictions[i] = employee.LabelWillLeave
				leave++
			}
		}
		rate := 0.0
		if len(body) == 3 {
			rate = 33.3
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"summary": map[string]any{
				"total_employees":        len(body),
				"will_stay":              len(body) - leave,
				"will_leave":             leave,
				"attrition_rate_percent": rate,
			},
			"predictions": predictions,
		})
	})
	api.srv = httptest.NewServer(mux)
	t.Cleanup(api.srv.Close)
	return api
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (a *fakeAPI) singleCalls() []map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]map[string]any(nil), a.singleBodies...)
}

func (a *fakeAPI) batchCalls() [][]map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([][]map[string]any(nil), a.batchBodies...)
}

type harness struct {
	t          *testing.T
	handlers   Handlers
	router     http.Handler
	api        *fakeAPI
	sessions   *memory.SessionStore
	workspaces *memory.WorkspaceStore
	cookies    map[string]*http.Cookie
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := newFakeAPI(t)
	client := churnapi.NewClient(api.srv.URL, api.srv.Client(), nil)
	sessions := memory.NewSessionStore()
	workspaces := memory.NewWorkspaceStore(employee.ScaleTen)
	authService := &authsvc.Service{API: client, Sessions: sessions, Workspaces: workspaces}
	predictions := &prediction.Service{API: client}
	reportService := &reports.Service{Exporter: spreadsheet.Exporter{}}

	pages, err := NewPagesHandler()
	require.NoError(t, err)

	handlers := Handlers{
		Pages:      pages,
		Auth:       AuthHandler{Service: authService, Tokens: security.RandomTokenGenerator{}},
		Dashboard:  DashboardHandler{Predictions: predictions, Workspaces: workspaces},
		Department: DepartmentHandler{Predictions: predictions, Reports: reportService, Workspaces: workspaces},
		FormsAPI:   FormsAPIHandler{Workspaces: workspaces},
		Session:    BrowserSession{Auth: authService, Tokens: security.RandomTokenGenerator{}}.Handle,
	}
	router, err := NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{}, handlers)
	require.NoError(t, err)

	return &harness{
		t:          t,
		handlers:   handlers,
		router:     router,
		api:        api,
		sessions:   sessions,
		workspaces: workspaces,
		cookies:    map[string]*http.Cookie{},
	}
}

// newServerHarness serves through NewServer, CSRF protection included.
func newServerHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	cfg := config.Config{Env: "test", CSRFKey: strings.Repeat("k", 32)}
	srv, err := NewServer(cfg, obs.Middleware{}, obs.HealthHandlers{}, h.handlers)
	require.NoError(t, err)
	h.router = srv.Handler
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	for _, c := range h.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		h.cookies[c.Name] = c
	}
	return rec
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) sendJSON(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return h.do(req)
}

func (h *harness) browserID() domainauth.BrowserID {
	c, ok := h.cookies[SessionCookieName]
	require.True(h.t, ok, "no session cookie yet")
	return domainauth.BrowserID(c.Value)
}

func (h *harness) login() {
	h.t.Helper()
	rec := h.postForm("/login", url.Values{"username": {"hr_admin"}, "password": {"secret"}})
	require.Equal(h.t, http.StatusSeeOther, rec.Code)
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

func validRow(prefix string) url.Values {
	return url.Values{
		prefix + forms.FieldSatisfaction: {"7"},
		prefix + forms.FieldEvaluation:   {"6"},
		prefix + forms.FieldProjects:     {"3"},
		prefix + forms.FieldHours:        {"160"},
		prefix + forms.FieldYears:        {"4"},
		prefix + forms.FieldAccident:     {"0"},
		prefix + forms.FieldPromotion:    {"0"},
		prefix + forms.FieldDepartment:   {"sales"},
		prefix + forms.FieldSalary:       {"low"},
	}
}

func merge(sets ...url.Values) url.Values {
	out := url.Values{}
	for _, set := range sets {
		for k, v := range set {
			out[k] = append(out[k], v...)
		}
	}
	return out
}
