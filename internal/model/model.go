// Package model содержит доменные сущности панели прачечной.
package model

import (
	"encoding/json"
	"strings"
)

// OrderStatus описывает статус обработки мешка с бельём.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusInProgress OrderStatus = "INPROGRESS"
	OrderStatusComplete   OrderStatus = "COMPLETE"
)

// RoleWasherman — единственная роль пользователя панели.
const RoleWasherman = "washerman"

// User представляет аутентифицированного работника прачечной.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Order описывает заказ (мешок) в том виде, в каком его отдаёт бэкенд.
type Order struct {
	ID              int64
	BagNo           string
	StudentName     string
	NumberOfClothes int
	Status          OrderStatus
	SubmissionDate  string
	Notes           string
	CreatedAt       string
	UpdatedAt       string
}

// orderWire повторяет формат бэкенда. Количество вещей приходит либо в
// numberOfClothes, либо в устаревшем noOfClothes.
type orderWire struct {
	ID              int64  `json:"id"`
	BagNo           string `json:"bagNo"`
	StudentName     string `json:"studentName"`
	NumberOfClothes *int   `json:"numberOfClothes"`
	NoOfClothes     *int   `json:"noOfClothes"`
	Status          string `json:"status"`
	SubmissionDate  string `json:"submissionDate"`
	Notes           string `json:"notes"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// UnmarshalJSON разбирает заказ, сводя оба имени поля количества вещей к
// одному: приоритет у numberOfClothes, затем noOfClothes, иначе 0.
func (o *Order) UnmarshalJSON(data []byte) error {
	var w orderWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	count := 0
	switch {
	case w.NumberOfClothes != nil:
		count = *w.NumberOfClothes
	case w.NoOfClothes != nil:
		count = *w.NoOfClothes
	}

	*o = Order{
		ID:              w.ID,
		BagNo:           w.BagNo,
		StudentName:     w.StudentName,
		NumberOfClothes: count,
		Status:          OrderStatus(strings.ToUpper(w.Status)),
		SubmissionDate:  w.SubmissionDate,
		Notes:           w.Notes,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	return nil
}

// OrderUpdate описывает частичное обновление заказа.
type OrderUpdate struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// Student представляет студента из справочника бэкенда.
type Student struct {
	BagNo        string `json:"bagNo"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	EnrollmentNo string `json:"enrollmentNo"`
	PhoneNo      string `json:"phoneNo"`
	ResidencyNo  string `json:"residencyNo"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// DashboardStats содержит агрегированные счётчики заказов для главной страницы.
type DashboardStats struct {
	TotalOrders      int     `json:"totalOrders"`
	PendingOrders    int     `json:"pendingOrders"`
	InprogressOrders int     `json:"inprogressOrders"`
	CompleteOrders   int     `json:"completeOrders"`
	TodayOrders      int     `json:"todayOrders"`
	RecentOrders     []Order `json:"recentOrders"`
}

// DailyCount — количество заказов за один день.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// StatusCount — доля заказов в одном статусе.
type StatusCount struct {
	Status     OrderStatus `json:"status"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

// OrderStatistics содержит данные для графиков статистики.
type OrderStatistics struct {
	Daily              []DailyCount  `json:"daily"`
	StatusDistribution []StatusCount `json:"statusDistribution"`
}
