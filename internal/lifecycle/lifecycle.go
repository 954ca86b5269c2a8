// Package lifecycle реализует трёхэтапный жизненный цикл заказа:
// PENDING → INPROGRESS → COMPLETE, без обратных и побочных переходов.
package lifecycle

import (
	"strings"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

// NextStatus возвращает следующий статус цикла. Для COMPLETE перехода нет.
func NextStatus(current model.OrderStatus) (model.OrderStatus, bool) {
	switch current {
	case model.OrderStatusPending:
		return model.OrderStatusInProgress, true
	case model.OrderStatusInProgress:
		return model.OrderStatusComplete, true
	default:
		return "", false
	}
}

// CanAdvance сообщает, допускает ли текущий статус переход вперёд.
func CanAdvance(current model.OrderStatus) bool {
	return current == model.OrderStatusPending || current == model.OrderStatusInProgress
}

// WireStatus переводит статус во внешний формат бэкенда: бэкенд принимает
// строки в нижнем регистре, внутреннее перечисление хранится в верхнем.
func WireStatus(s model.OrderStatus) string {
	return strings.ToLower(string(s))
}

// ParseStatus разбирает строку статуса без учёта регистра.
func ParseStatus(raw string) (model.OrderStatus, bool) {
	switch model.OrderStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case model.OrderStatusPending:
		return model.OrderStatusPending, true
	case model.OrderStatusInProgress:
		return model.OrderStatusInProgress, true
	case model.OrderStatusComplete:
		return model.OrderStatusComplete, true
	default:
		return "", false
	}
}

// View задаёт контекст отображения: разные экраны показывают разные
// подписи для одного и того же перечисления.
type View int

const (
	// ViewTable — таблица заказов и бейджи статуса.
	ViewTable View = iota
	// ViewDetail — карточка деталей мешка.
	ViewDetail
	// ViewFilter — панель фильтров по статусу.
	ViewFilter
)

var defaultLabels = map[model.OrderStatus]string{
	model.OrderStatusPending:    "To Start",
	model.OrderStatusInProgress: "Washing",
	model.OrderStatusComplete:   "Done",
}

var viewOverrides = map[View]map[model.OrderStatus]string{
	ViewDetail: {
		model.OrderStatusComplete: "Finished",
	},
	ViewFilter: {
		model.OrderStatusPending:    "Start",
		model.OrderStatusInProgress: "Wash",
	},
}

// Label возвращает подпись статуса для таблицы заказов.
func Label(s model.OrderStatus) string {
	return LabelFor(ViewTable, s)
}

// LabelFor возвращает подпись статуса для конкретного экрана. Переопределения
// накладываются поверх общей таблицы, само перечисление не меняется.
func LabelFor(v View, s model.OrderStatus) string {
	if o, ok := viewOverrides[v]; ok {
		if label, ok := o[s]; ok {
			return label
		}
	}
	if label, ok := defaultLabels[s]; ok {
		return label
	}
	return string(s)
}

// ActionLabel возвращает подпись кнопки перехода для текущего статуса.
func ActionLabel(current model.OrderStatus) string {
	switch current {
	case model.OrderStatusPending:
		return "Start Washing"
	case model.OrderStatusInProgress:
		return "Mark Finished"
	default:
		return ""
	}
}
