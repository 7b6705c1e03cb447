package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/launchpadhq/intake-platform/internal/intake"
	"github.com/launchpadhq/intake-platform/internal/leads"
	"github.com/launchpadhq/intake-platform/internal/webchat"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.New("error")
	store := intake.NewMemoryStore()
	repo := leads.NewInMemoryRepository()
	svc := leads.NewService(repo, nil, logger)
	engine := intake.NewEngine(intake.NewMatcher(logger), 3, logger)
	webchatHandler := webchat.NewHandler(engine, store, svc, nil, nil, []byte("// widget"), logger)
	leadsHandler := leads.NewHandler(repo, svc, logger)

	return New(&Config{
		Logger:          logger,
		WebchatHandler:  webchatHandler,
		LeadsHandler:    leadsHandler,
		AdminAuthSecret: testSecret,
	})
}

func adminToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterChatMessageEndpoint(t *testing.T) {
	router := newTestRouter(t)

	body := `{"business_id":"biz-1","message":"John Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp webchat.TurnResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Error("expected a session id in the response")
	}
	if resp.State != string(intake.StateCollectContact) {
		t.Errorf("expected state %q, got %q", intake.StateCollectContact, resp.State)
	}
}

func TestRouterWidgetEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/widget.js", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Fatalf("expected javascript response, got %s", ct)
	}
}

func TestRouterDashboardRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("X-Business-Id", "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d without a token, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterDashboardRequiresTenant(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d without a business scope, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRouterDashboardListLeads(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	req.Header.Set("X-Business-Id", "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp leads.ListLeadsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty lead list, got %d", resp.Count)
	}
}

// Dashboard API routes are only mounted on the configured dashboard
// host; the marketing host returns 404 for them.
func TestRouterDashboardSubdomainGating(t *testing.T) {
	logger := logging.New("error")
	repo := leads.NewInMemoryRepository()
	svc := leads.NewService(repo, nil, logger)
	leadsHandler := leads.NewHandler(repo, svc, logger)

	router := New(&Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		AdminAuthSecret:    testSecret,
		DashboardSubdomain: "dashboard",
	})

	token := adminToken(t)

	req := httptest.NewRequest(http.MethodGet, "http://launchpadhq.com/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Business-Id", "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on the marketing host, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "http://dashboard.launchpadhq.com/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Business-Id", "biz-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on the dashboard host, got %d", rr.Code)
	}
}

func TestRouterDashboardDisabledWithoutSecret(t *testing.T) {
	logger := logging.New("error")
	repo := leads.NewInMemoryRepository()
	svc := leads.NewService(repo, nil, logger)

	router := New(&Config{
		Logger:       logger,
		LeadsHandler: leads.NewHandler(repo, svc, logger),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("X-Business-Id", "biz-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when admin auth is not configured, got %d", rr.Code)
	}
}
