// Package handler содержит HTTP-обработчики экранов панели прачечной.
package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/mmeshcher/washerman-panel/internal/gateway"
	"github.com/mmeshcher/washerman-panel/internal/lifecycle"
	"github.com/mmeshcher/washerman-panel/internal/middleware"
	"github.com/mmeshcher/washerman-panel/internal/model"
	"github.com/mmeshcher/washerman-panel/internal/session"
	"github.com/mmeshcher/washerman-panel/internal/viewmodel"
)

//go:embed templates/*.html
var templateFS embed.FS

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout()
	ForceLogout()
	CurrentUser() (*model.User, bool)
	Orders(ctx context.Context) ([]model.Order, error)
	PendingOrders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	AdvanceOrder(ctx context.Context, id int64) (model.OrderStatus, error)
	UpdateNotes(ctx context.Context, id int64, notes string) (*model.Order, error)
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	Students(ctx context.Context) ([]viewmodel.StudentSummary, error)
	StudentDetails(ctx context.Context, name string) (*viewmodel.StudentDetails, error)
	StudentByBag(ctx context.Context, bagNo string) (*model.Student, error)
	StudentOrdersByBag(ctx context.Context, bagNo string) ([]model.Order, error)
	Statistics(ctx context.Context, startDate, endDate string) (*model.OrderStatistics, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// Handler реализует HTTP-обработчики панели прачечной.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	templates      *template.Template
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) (*Handler, error) {
	funcs := template.FuncMap{
		"statusLabel": func(s model.OrderStatus) string {
			return lifecycle.Label(s)
		},
		"detailLabel": func(s model.OrderStatus) string {
			return lifecycle.LabelFor(lifecycle.ViewDetail, s)
		},
		"filterLabel": func(s model.OrderStatus) string {
			return lifecycle.LabelFor(lifecycle.ViewFilter, s)
		},
		"actionLabel": lifecycle.ActionLabel,
		"canAdvance":  lifecycle.CanAdvance,
		"wireStatus":  lifecycle.WireStatus,
		"statusClass": func(s model.OrderStatus) string {
			switch s {
			case model.OrderStatusPending:
				return "badge badge-pending"
			case model.OrderStatusInProgress:
				return "badge badge-inprogress"
			case model.OrderStatusComplete:
				return "badge badge-complete"
			default:
				return "badge"
			}
		},
		"ordersURL": ordersURL,
		"pageSeq": func(totalPages int) []int {
			seq := make([]int, 0, totalPages)
			for i := 1; i <= totalPages; i++ {
				seq = append(seq, i)
			}
			return seq
		},
		"inc": func(i int) int { return i + 1 },
		"dec": func(i int) int { return i - 1 },
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		templates:      tmpl,
	}, nil
}

// ordersURL собирает ссылку на список заказов. Смена фильтра или запроса
// всегда указывает на первую страницу; только навигация по страницам
// передаёт другой номер.
func ordersURL(filter model.OrderStatus, query string, page int) string {
	params := url.Values{}
	params.Set("filter", lifecycle.WireStatus(filter))
	if query != "" {
		params.Set("q", query)
	}
	if page > 1 {
		params.Set("page", fmt.Sprintf("%d", page))
	}
	return "/orders?" + params.Encode()
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleUnauthorized выполняет глобальную реакцию на 401 от бэкенда:
// очистка сессии, гашение cookie панели и перенаправление на экран входа.
// Возвращает true, если ошибка была обработана.
func (h *Handler) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}

	h.service.ForceLogout()
	h.authMiddleware.ClearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
	return true
}

func (h *Handler) currentUser() *model.User {
	user, ok := h.service.CurrentUser()
	if !ok {
		return nil
	}
	return user
}
