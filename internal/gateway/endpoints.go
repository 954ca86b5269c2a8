package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginData — полезная нагрузка успешного ответа на вход.
type LoginData struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Login аутентифицирует работника прачечной.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginData, error) {
	var data LoginData
	err := c.do(ctx, http.MethodPost, "/auth/washerman/login", loginRequest{
		Username: username,
		Password: password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Dashboard возвращает агрегированные счётчики заказов.
func (c *Client) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/washerman/dashboard", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AllOrders возвращает полный список заказов.
func (c *Client) AllOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/all", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PendingOrders возвращает заказы в статусе PENDING.
func (c *Client) PendingOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/pending", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order возвращает один заказ по идентификатору.
func (c *Client) Order(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus переводит заказ в новый статус. Бэкенд принимает статус
// в нижнем регистре, поэтому вызывающая сторона обязана передать уже
// сконвертированное значение (lifecycle.WireStatus).
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, wireStatus string) (*model.Order, error) {
	var order model.Order
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d/status", id), statusRequest{
		Status: wireStatus,
	}, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrder выполняет частичное обновление заказа (статус и/или заметки).
func (c *Client) UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), update, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// StudentOrders возвращает заказы по номеру мешка студента.
func (c *Client) StudentOrders(ctx context.Context, bagNo string) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/student/"+escape(bagNo), nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// StudentByBag возвращает карточку студента из справочника.
func (c *Client) StudentByBag(ctx context.Context, bagNo string) (*model.Student, error) {
	var student model.Student
	if err := c.do(ctx, http.MethodGet, "/admin/students/"+escape(bagNo), nil, &student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Statistics возвращает временные ряды по заказам за указанный период.
func (c *Client) Statistics(ctx context.Context, startDate, endDate string) (*model.OrderStatistics, error) {
	params := url.Values{}
	if startDate != "" {
		params.Set("startDate", startDate)
	}
	if endDate != "" {
		params.Set("endDate", endDate)
	}

	path := "/washerman/statistics"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var stats model.OrderStatistics
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword меняет пароль текущего работника.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPut, "/washerman/password", changePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil)
}
