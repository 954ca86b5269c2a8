// Package gateway предоставляет клиент REST-бэкенда прачечной. Все обращения
// панели к бэкенду проходят через него: подстановка bearer-токена, разбор
// конверта ответа и сведение ошибок к единой таксономии.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnauthorized возвращается при ответе 401 на любой вызов и запускает
// глобальную очистку сессии с перенаправлением на экран входа.
var ErrUnauthorized = errors.New("unauthorized")

// Сообщения для случаев, когда бэкенд не прислал собственного текста.
const (
	MsgConnectivity = "Failed to connect to server"
	MsgServerError  = "Server error. Please try again later."
)

// APIError описывает неуспешный ответ бэкенда. StatusCode равен нулю при
// транспортной ошибке (ответ не получен).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend %d: %s", e.StatusCode, e.Message)
}

// Message возвращает человекочитаемый текст ошибки для баннера на экране.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return MsgServerError
}

// TokenSource отдаёт маркер активной сессии. Пустая строка означает
// неаутентифицированный запрос.
type TokenSource interface {
	Token() string
}

// Client инкапсулирует HTTP-взаимодействие с бэкендом прачечной.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	tokens     TokenSource
}

type noRetryKey struct{}

// NewClient создаёт клиент бэкенда с фиксированным таймаутом запроса.
// Повторяются только идемпотентные GET-запросы; изменяющие вызовы
// выполняются ровно один раз.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Value(noRetryKey{}) != nil {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc,
		tokens:     tokens,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c == nil || c.baseURL == "" {
		return fmt.Errorf("gateway client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	if method != http.MethodGet {
		ctx = context.WithValue(ctx, noRetryKey{}, true)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, base+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: MsgConnectivity}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Message: MsgConnectivity}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusInternalServerError {
		return &APIError{StatusCode: resp.StatusCode, Message: MsgServerError}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = MsgServerError
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func escape(segment string) string {
	return url.PathEscape(segment)
}
