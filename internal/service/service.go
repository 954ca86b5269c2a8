// Package service реализует бизнес-логику панели прачечной поверх
// клиента бэкенда и локального хранилища сессии.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mmeshcher/washerman-panel/internal/gateway"
	"github.com/mmeshcher/washerman-panel/internal/lifecycle"
	"github.com/mmeshcher/washerman-panel/internal/model"
	"github.com/mmeshcher/washerman-panel/internal/session"
	"github.com/mmeshcher/washerman-panel/internal/viewmodel"
)

// Ошибки входа: тексты показываются пользователю как есть.
var (
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrNotAdvanceable     = errors.New("order is already complete")
)

// Gateway описывает контракт клиента бэкенда, используемый сервисом.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*gateway.LoginData, error)
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
	AllOrders(ctx context.Context) ([]model.Order, error)
	PendingOrders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, wireStatus string) (*model.Order, error)
	UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (*model.Order, error)
	StudentOrders(ctx context.Context, bagNo string) ([]model.Order, error)
	StudentByBag(ctx context.Context, bagNo string) (*model.Student, error)
	Statistics(ctx context.Context, startDate, endDate string) (*model.OrderStatistics, error)
	ChangePassword(ctx context.Context, current, next string) error
}

// Service содержит бизнес-логику панели прачечной.
type Service struct {
	gw       Gateway
	sessions *session.Store
	logger   *zap.Logger

	// Последовательность выборок списка заказов: применяется только самый
	// свежий завершившийся ответ, отставшие отбрасываются.
	seq     atomic.Uint64
	mu      sync.Mutex
	applied uint64
	latest  []model.Order
}

// NewService создаёт сервис с указанным клиентом бэкенда и хранилищем сессии.
func NewService(gw Gateway, sessions *session.Store, logger *zap.Logger) *Service {
	return &Service{
		gw:       gw,
		sessions: sessions,
		logger:   logger,
	}
}

// Login аутентифицирует работника и сохраняет сессию с синтетическим
// маркером. Тексты ошибок соответствуют таксономии: 401 — неверные
// учётные данные, 5xx — ошибка сервера, обрыв сети — сообщение о связи.
func (s *Service) Login(ctx context.Context, username, password string) (*session.Session, error) {
	data, err := s.gw.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		var apiErr *gateway.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode >= 500 {
				return nil, errors.New(gateway.MsgServerError)
			}
			return nil, errors.New(apiErr.Message)
		}
		return nil, errors.New(gateway.MsgConnectivity)
	}

	user := model.User{
		ID:       data.ID,
		Username: data.Username,
		Role:     model.RoleWasherman,
	}
	if user.Username == "" {
		user.Username = username
	}

	sess, err := s.sessions.Save(user)
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("washerman logged in", zap.String("username", user.Username))
	return sess, nil
}

// Logout синхронно очищает локальную сессию; серверного вызова нет.
func (s *Service) Logout() {
	s.sessions.Clear()
}

// ForceLogout выполняет глобальную очистку сессии при 401 от любого вызова.
// Очистка идемпотентна, поэтому одновременные 401 не мешают друг другу.
func (s *Service) ForceLogout() {
	if s.sessions.Current() != nil {
		s.logger.Warn("session rejected by backend, forcing logout")
	}
	s.sessions.Clear()
}

// CurrentUser возвращает пользователя активной сессии.
func (s *Service) CurrentUser() (*model.User, bool) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, false
	}
	u := sess.User
	return &u, true
}

// Orders возвращает список заказов. Ответы упорядочиваются монотонным
// счётчиком: если за время запроса успел примениться более свежий ответ,
// возвращается он, а отставший отбрасывается.
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	seq := s.seq.Add(1)

	orders, err := s.gw.AllOrders(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.applied {
		s.applied = seq
		s.latest = orders
	}
	return s.latest, nil
}

// PendingOrders возвращает заказы в статусе PENDING напрямую с бэкенда.
func (s *Service) PendingOrders(ctx context.Context) ([]model.Order, error) {
	return s.gw.PendingOrders(ctx)
}

// Order возвращает один заказ по идентификатору.
func (s *Service) Order(ctx context.Context, id int64) (*model.Order, error) {
	return s.gw.Order(ctx, id)
}

// AdvanceOrder переводит заказ на следующий шаг цикла. Статус берётся с
// бэкенда, а не из локального состояния; при ошибке локально ничего не
// меняется — экран всегда перечитывает статус свежей выборкой.
func (s *Service) AdvanceOrder(ctx context.Context, id int64) (model.OrderStatus, error) {
	order, err := s.gw.Order(ctx, id)
	if err != nil {
		return "", err
	}

	next, ok := lifecycle.NextStatus(order.Status)
	if !ok {
		return "", ErrNotAdvanceable
	}

	if _, err := s.gw.UpdateOrderStatus(ctx, id, lifecycle.WireStatus(next)); err != nil {
		return "", err
	}

	s.logger.Info("order advanced",
		zap.Int64("orderID", id),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))
	return next, nil
}

// UpdateNotes сохраняет заметки работника к заказу.
func (s *Service) UpdateNotes(ctx context.Context, id int64, notes string) (*model.Order, error) {
	return s.gw.UpdateOrder(ctx, id, model.OrderUpdate{Notes: &notes})
}

// Dashboard возвращает счётчики для главной страницы.
func (s *Service) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	return s.gw.Dashboard(ctx)
}

// Students строит индекс студентов по текущему списку заказов.
func (s *Service) Students(ctx context.Context) ([]viewmodel.StudentSummary, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return viewmodel.BuildStudentIndex(orders, s.logger), nil
}

// StudentDetails возвращает сводку студента с полной историей заказов.
func (s *Service) StudentDetails(ctx context.Context, name string) (*viewmodel.StudentDetails, error) {
	orders, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	index := viewmodel.BuildStudentIndex(orders, s.logger)
	return viewmodel.FindStudentDetails(index, orders, name)
}

// StudentByBag возвращает карточку студента из справочника бэкенда.
func (s *Service) StudentByBag(ctx context.Context, bagNo string) (*model.Student, error) {
	return s.gw.StudentByBag(ctx, bagNo)
}

// StudentOrdersByBag возвращает заказы по номеру мешка.
func (s *Service) StudentOrdersByBag(ctx context.Context, bagNo string) ([]model.Order, error) {
	return s.gw.StudentOrders(ctx, bagNo)
}

// Statistics возвращает временные ряды по заказам за период.
func (s *Service) Statistics(ctx context.Context, startDate, endDate string) (*model.OrderStatistics, error) {
	return s.gw.Statistics(ctx, startDate, endDate)
}

// ChangePassword меняет пароль работника. Минимальная длина нового пароля
// проверяется до обращения к бэкенду.
func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	if len(next) < 8 {
		return errors.New("New password must be at least 8 characters")
	}
	return s.gw.ChangePassword(ctx, current, next)
}
