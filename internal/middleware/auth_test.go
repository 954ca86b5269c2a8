package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mmeshcher/washerman-panel/internal/model"
	"github.com/mmeshcher/washerman-panel/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(filepath.Join(t.TempDir(), "session.json"))
}

func TestAuthMiddleware_WithValidCookie(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.Save(model.User{ID: 42, Username: "dhobi", Role: model.RoleWasherman})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	m := NewAuthMiddleware("test-secret", store)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		got, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatalf("session not in context")
		}
		if got.User.Username != "dhobi" {
			t.Fatalf("username from context = %s, want dhobi", got.User.Username)
		}
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)

	if err := m.SetAuthCookie(w, sess); err != nil {
		t.Fatalf("SetAuthCookie error: %v", err)
	}
	resCookies := w.Result().Cookies()
	if len(resCookies) == 0 {
		t.Fatalf("no cookies set by SetAuthCookie")
	}

	r.AddCookie(resCookies[0])

	handler := m.Middleware(next)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if !nextCalled {
		t.Fatalf("next handler was not called")
	}
}

func TestAuthMiddleware_WithoutCookie(t *testing.T) {
	m := NewAuthMiddleware("test-secret", newTestStore(t))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/orders", nil)

	handler := m.Middleware(next)
	handler.ServeHTTP(w, r)

	res := w.Result()
	if res.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want redirect to login", res.StatusCode)
	}
	if loc := res.Header.Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestAuthMiddleware_CookieForClearedSession(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.Save(model.User{ID: 1, Username: "dhobi"})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	m := NewAuthMiddleware("test-secret", store)

	w := httptest.NewRecorder()
	if err := m.SetAuthCookie(w, sess); err != nil {
		t.Fatalf("SetAuthCookie error: %v", err)
	}
	cookie := w.Result().Cookies()[0]

	// Сессию очистил глобальный обработчик 401: cookie больше не действует.
	store.Clear()

	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.AddCookie(cookie)

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(rec, r)

	if rec.Result().StatusCode != http.StatusFound {
		t.Fatalf("expected redirect for cleared session")
	}
}

func TestAuthMiddleware_TamperedToken(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(model.User{ID: 1, Username: "dhobi"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	m := NewAuthMiddleware("test-secret", store)

	r := httptest.NewRequest(http.MethodGet, "/orders", nil)
	r.AddCookie(&http.Cookie{Name: "panel_token", Value: "not-a-jwt"})

	rec := httptest.NewRecorder()
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(rec, r)

	if rec.Result().StatusCode != http.StatusFound {
		t.Fatalf("expected redirect for tampered token")
	}
}
