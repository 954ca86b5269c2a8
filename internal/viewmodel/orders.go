// Package viewmodel содержит чистую логику подготовки данных к отображению:
// фильтрация и постраничный вывод заказов, агрегация по студентам.
package viewmodel

import (
	"strings"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

// PageSize — фиксированный размер страницы списка заказов.
const PageSize = 10

// OrderPage описывает одну страницу отфильтрованного списка заказов.
type OrderPage struct {
	Orders      []model.Order
	CurrentPage int
	TotalPages  int
	Total       int
}

// FilterOrders применяет фильтр по статусу и затем поисковый запрос.
// Сравнение статусов не зависит от регистра; поиск — подстрока без учёта
// регистра по номеру мешка или имени студента. Варианта «все статусы» нет.
func FilterOrders(orders []model.Order, filter model.OrderStatus, query string) []model.Order {
	filtered := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(string(o.Status), string(filter)) {
			filtered = append(filtered, o)
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return filtered
	}

	matched := filtered[:0]
	for _, o := range filtered {
		if strings.Contains(strings.ToLower(o.BagNo), q) ||
			strings.Contains(strings.ToLower(o.StudentName), q) {
			matched = append(matched, o)
		}
	}
	return matched
}

// Paginate нарезает отфильтрованный список на страницы фиксированного
// размера. Для пустого списка страниц ноль; запрошенный номер страницы
// ограничивается диапазоном [1, max(1, totalPages)].
func Paginate(filtered []model.Order, page int) OrderPage {
	totalPages := (len(filtered) + PageSize - 1) / PageSize

	if page < 1 {
		page = 1
	}
	if maxPage := max(1, totalPages); page > maxPage {
		page = maxPage
	}

	start := (page - 1) * PageSize
	end := min(start+PageSize, len(filtered))
	if start > len(filtered) {
		start = len(filtered)
	}

	return OrderPage{
		Orders:      filtered[start:end],
		CurrentPage: page,
		TotalPages:  totalPages,
		Total:       len(filtered),
	}
}

// BuildOrderPage объединяет фильтрацию, поиск и пагинацию в фиксированном
// порядке.
func BuildOrderPage(orders []model.Order, filter model.OrderStatus, query string, page int) OrderPage {
	return Paginate(FilterOrders(orders, filter, query), page)
}

// CountByStatus считает заказы в указанном статусе для панели фильтров.
func CountByStatus(orders []model.Order, status model.OrderStatus) int {
	count := 0
	for _, o := range orders {
		if strings.EqualFold(string(o.Status), string(status)) {
			count++
		}
	}
	return count
}
