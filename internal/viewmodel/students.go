package viewmodel

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mmeshcher/washerman-panel/internal/model"
)

// UnknownStudent — ключ группировки для заказов без имени студента.
const UnknownStudent = "Unknown Student"

// ErrStudentNotFound возвращается, когда имя не найдено в построенном
// индексе. Это отдельный исход, а не пустой успешный результат.
var ErrStudentNotFound = errors.New("student not found")

// StudentSummary — производная запись о студенте, собранная из заказов.
// Бэкенд такой сущности не отдаёт.
type StudentSummary struct {
	ID              string
	Name            string
	BagNo           string
	TotalOrders     int
	ActiveOrders    int
	CompletedOrders int
	JoinDate        string
}

// StudentDetails — сводка студента вместе с полной историей его заказов.
type StudentDetails struct {
	StudentSummary
	Orders []model.Order
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// Номер мешка считается заглушкой, пока не встретился настоящий: настоящий
// номер, однажды увиденный, больше не перезаписывается.
func isPlaceholderBag(bagNo string) bool {
	return bagNo == "" || bagNo == "Unknown" || strings.HasPrefix(bagNo, "BAG-")
}

func bagOrPlaceholder(o model.Order) string {
	if o.BagNo != "" {
		return o.BagNo
	}
	return fmt.Sprintf("BAG-%d", o.ID)
}

// BuildStudentIndex группирует заказы по имени студента за один проход.
// Ключ группировки — исходная строка имени без нормализации пробелов и
// диакритики; заказы без имени попадают в группу UnknownStudent. Сбой на
// одном заказе логируется и не прерывает обработку остальных. Результат
// отсортирован по имени с учётом локали.
func BuildStudentIndex(orders []model.Order, logger *zap.Logger) []StudentSummary {
	index := make(map[string]*StudentSummary, len(orders))

	for _, o := range orders {
		if err := accumulate(index, o); err != nil {
			logger.Warn("skipping malformed order",
				zap.Int64("orderID", o.ID),
				zap.Error(err))
		}
	}

	students := make([]StudentSummary, 0, len(index))
	for _, s := range index {
		students = append(students, *s)
	}

	collator := collate.New(language.English)
	sort.Slice(students, func(i, j int) bool {
		return collator.CompareString(students[i].Name, students[j].Name) < 0
	})
	return students
}

func accumulate(index map[string]*StudentSummary, o model.Order) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("process order: %v", r)
		}
	}()

	name := o.StudentName
	if name == "" {
		name = UnknownStudent
	}

	existing, ok := index[name]
	if !ok {
		summary := &StudentSummary{
			ID:          slugify(name),
			Name:        name,
			BagNo:       bagOrPlaceholder(o),
			TotalOrders: 1,
			JoinDate:    o.CreatedAt,
		}
		if o.Status == model.OrderStatusComplete {
			summary.CompletedOrders = 1
		} else {
			summary.ActiveOrders = 1
		}
		index[name] = summary
		return nil
	}

	existing.TotalOrders++
	if o.Status == model.OrderStatusComplete {
		existing.CompletedOrders++
	} else {
		existing.ActiveOrders++
	}
	if isPlaceholderBag(existing.BagNo) {
		existing.BagNo = bagOrPlaceholder(o)
	}
	return nil
}

// FindStudentDetails ищет студента по точному совпадению имени без учёта
// регистра и прикладывает все его заказы — ограничение «первые десять»
// живёт только в слое отображения.
func FindStudentDetails(index []StudentSummary, orders []model.Order, name string) (*StudentDetails, error) {
	var summary *StudentSummary
	for i := range index {
		if strings.EqualFold(index[i].Name, name) {
			summary = &index[i]
			break
		}
	}
	if summary == nil {
		return nil, ErrStudentNotFound
	}

	matched := make([]model.Order, 0)
	for _, o := range orders {
		if o.StudentName != "" && strings.EqualFold(o.StudentName, name) {
			matched = append(matched, o)
		}
	}

	return &StudentDetails{
		StudentSummary: *summary,
		Orders:         matched,
	}, nil
}

// FilterStudents применяет поиск по имени к уже построенному индексу.
func FilterStudents(students []StudentSummary, query string) []StudentSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return students
	}

	matched := make([]StudentSummary, 0, len(students))
	for _, s := range students {
		if strings.Contains(strings.ToLower(s.Name), q) {
			matched = append(matched, s)
		}
	}
	return matched
}
