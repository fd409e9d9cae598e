package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authHandler "github.com/mockmate/webapp/internal/handler/auth"
	dashboardHandler "github.com/mockmate/webapp/internal/handler/dashboard"
	interviewHandler "github.com/mockmate/webapp/internal/handler/interview"
	pagesHandler "github.com/mockmate/webapp/internal/handler/pages"
	"github.com/mockmate/webapp/internal/middleware"
	modelauth "github.com/mockmate/webapp/internal/model/auth"
	"github.com/mockmate/webapp/internal/model/interview"
	authService "github.com/mockmate/webapp/internal/service/auth"
	dashboardService "github.com/mockmate/webapp/internal/service/dashboard"
	interviewService "github.com/mockmate/webapp/internal/service/interview"
)

type stubProvider struct{}

func (stubProvider) SignUp(context.Context, string, string) (modelauth.Session, error) {
	return stubSession(), nil
}

func (stubProvider) SignIn(context.Context, string, string) (modelauth.Session, error) {
	return stubSession(), nil
}

func (stubProvider) SignOut(context.Context, string) error { return nil }

func stubSession() modelauth.Session {
	return modelauth.Session{
		AccessToken: "at-1",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        modelauth.User{ID: "user-1", Email: "dev@example.com"},
	}
}

type stubBackend struct{}

func (stubBackend) Chat(context.Context, string) (string, error) { return "hello", nil }

func (stubBackend) Upload(context.Context, string, io.Reader) (interview.ATSReport, error) {
	return interview.ATSReport{Score: "70/100"}, nil
}

func (stubBackend) GenerateReport(context.Context) (interview.ReportCard, error) {
	return interview.ReportCard{}, nil
}

type stubHistory struct{}

func (stubHistory) Dashboard(context.Context) ([]interview.Record, error) {
	return []interview.Record{{ID: 1, Score: "8"}}, nil
}

func newRouterServer(t *testing.T) (*httptest.Server, *authService.Store) {
	t.Helper()

	sessions := authService.NewStore(nil)
	registry := interviewService.NewRegistry(stubBackend{}, nil, interviewService.Options{
		TickInterval: time.Hour,
	})
	t.Cleanup(func() { registry.Drop("user-1") })

	pages, err := pagesHandler.New()
	if err != nil {
		t.Fatalf("pages.New err: %v", err)
	}

	router := NewRouter(sessions, Handlers{
		Auth:      authHandler.New(stubProvider{}, sessions, "", nil),
		Dashboard: dashboardHandler.New(dashboardService.New(stubHistory{})),
		Interview: interviewHandler.New(registry, nil, sessions),
		Pages:     pages,
	}, []string{"*"})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestRouterServesPublicSurface(t *testing.T) {
	srv, _ := newRouterServer(t)

	resp, err := http.Get(srv.URL + "/login")
	if err != nil {
		t.Fatalf("get /login: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/login status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/static/style.css")
	if err != nil {
		t.Fatalf("get static asset: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("static asset status = %d", resp.StatusCode)
	}
}

func TestRouterGatesProtectedSurface(t *testing.T) {
	srv, _ := newRouterServer(t)
	client := noRedirectClient()

	for _, path := range []string{"/", "/interview"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("%s status = %d, want %d", path, resp.StatusCode, http.StatusFound)
		}
	}

	for _, path := range []string{"/api/dashboard", "/api/interview/state", "/api/auth/session"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want %d", path, resp.StatusCode, http.StatusUnauthorized)
		}
	}
}

func TestRouterLoginThenDashboardFlow(t *testing.T) {
	srv, _ := newRouterServer(t)

	login, err := http.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email": "dev@example.com", "password": "hunter22"}`))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	login.Body.Close()
	if login.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", login.StatusCode)
	}

	var cookie *http.Cookie
	for _, c := range login.Cookies() {
		if c.Name == middleware.SessionCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/dashboard", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}

	var stats dashboardService.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 1 || stats.AvgScore != 8.0 {
		t.Fatalf("stats = %+v", stats)
	}
}
