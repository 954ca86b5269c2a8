// Package middleware содержит HTTP middleware панели прачечной.
package middleware

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mmeshcher/washerman-panel/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "panelSession"

const (
	authCookieName = "panel_token"
	authCookieTTL  = 12 * time.Hour
)

// AuthMiddleware проверяет аутентификацию браузера панели по подписанному
// JWT-cookie и сверяет его с активной локальной сессией.
type AuthMiddleware struct {
	secretKey []byte
	sessions  *session.Store
}

// NewAuthMiddleware создаёт middleware с указанным секретным ключом.
// Пустой секрет заменяется случайным: cookie перестают действовать после
// перезапуска, но панель остаётся работоспособной.
func NewAuthMiddleware(secret string, sessions *session.Store) *AuthMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &AuthMiddleware{
		secretKey: key,
		sessions:  sessions,
	}
}

type panelClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Middleware проверяет cookie панели и добавляет сессию в контекст запроса.
// Невалидный cookie или несовпадение с активной сессией ведут на экран входа.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(authCookieName)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		sessionID, ok := a.parseToken(cookie.Value)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		current := a.sessions.Current()
		if current == nil || current.ID != sessionID {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, current)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetAuthCookie устанавливает cookie панели для указанной сессии.
func (a *AuthMiddleware) SetAuthCookie(w http.ResponseWriter, sess *session.Session) error {
	now := time.Now()
	claims := panelClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.User.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(authCookieTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
	if err != nil {
		return fmt.Errorf("sign panel token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(authCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearAuthCookie немедленно гасит cookie панели.
func (a *AuthMiddleware) ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *AuthMiddleware) parseToken(raw string) (string, bool) {
	token, err := jwt.ParseWithClaims(raw, &panelClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secretKey, nil
	})
	if err != nil {
		return "", false
	}

	claims, ok := token.Claims.(*panelClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", false
	}
	return claims.SessionID, true
}

// SessionFromContext извлекает сессию панели из контекста запроса.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(*session.Session)
	return sess, ok
}
