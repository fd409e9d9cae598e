package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mockmate/webapp/internal/model/auth"
)

type fakeStore map[string]auth.Session

func (f fakeStore) Get(id string) (auth.Session, bool) {
	session, ok := f[id]
	return session, ok
}

func protected(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("gated handler ran without a session in context")
		}
		id, ok := SessionIDFromContext(r.Context())
		if !ok || id == "" {
			t.Fatal("gated handler ran without a session ID in context")
		}
		w.Write([]byte("hello " + session.User.Email))
	})
}

func TestGatePagesRedirectsAnonymousVisitors(t *testing.T) {
	handler := GatePages(fakeStore{})(protected(t))

	req := httptest.NewRequest(http.MethodGet, "/interview", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect target = %q, want /login", loc)
	}
	if body := rec.Body.String(); body == "hello " {
		t.Fatal("protected content must not render for anonymous visitors")
	}
}

func TestGatePagesRejectsStaleCookie(t *testing.T) {
	handler := GatePages(fakeStore{})(protected(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
	}
}

func TestGatePagesPassesAuthenticatedRequests(t *testing.T) {
	store := fakeStore{"sid-1": {User: auth.User{ID: "user-1", Email: "dev@example.com"}}}
	handler := GatePages(store)(protected(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body != "hello dev@example.com" {
		t.Fatalf("body = %q", body)
	}
}

func TestGateAPIRespondsWithJSONUnauthorized(t *testing.T) {
	handler := GateAPI(fakeStore{})(protected(t))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q, want application/json", ct)
	}
}
