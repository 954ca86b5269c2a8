package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/washerman-panel/internal/gateway"
	"github.com/mmeshcher/washerman-panel/internal/lifecycle"
	"github.com/mmeshcher/washerman-panel/internal/model"
	"github.com/mmeshcher/washerman-panel/internal/service"
	"github.com/mmeshcher/washerman-panel/internal/viewmodel"
)

// studentOrdersDisplayLimit ограничивает историю заказов на карточке
// студента. Это предел отображения: данные не усекаются.
const studentOrdersDisplayLimit = 10

type basePage struct {
	User  *model.User
	Error string
	Retry string
	Flash string
}

type loginPage struct {
	Error    string
	Username string
}

// LoginPage отображает форму входа.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.currentUser() != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "login", loginPage{})
}

// LoginSubmit выполняет вход работника и установку cookie панели.
func (h *Handler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login", loginPage{Error: "Invalid form submission"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.render(w, http.StatusOK, "login", loginPage{
			Error:    "Username and password are required",
			Username: username,
		})
		return
	}

	sess, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		h.render(w, http.StatusOK, "login", loginPage{
			Error:    err.Error(),
			Username: username,
		})
		return
	}

	if err := h.authMiddleware.SetAuthCookie(w, sess); err != nil {
		h.logger.Error("set auth cookie", zap.Error(err))
		h.render(w, http.StatusInternalServerError, "login", loginPage{Error: "Login failed"})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Logout очищает локальную сессию; серверного вызова нет.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout()
	h.authMiddleware.ClearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

type dashboardPage struct {
	basePage
	Stats *model.DashboardStats
	Queue []model.Order
}

// DashboardPage отображает счётчики заказов и очередь мешков в ожидании.
func (h *Handler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	data := dashboardPage{basePage: basePage{User: h.currentUser(), Retry: "/"}}

	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("dashboard fetch error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "dashboard", data)
		return
	}
	data.Stats = stats

	queue, err := h.service.PendingOrders(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		// Счётчики уже получены: очередь деградирует до баннера ошибки.
		h.logger.Error("pending queue fetch error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "dashboard", data)
		return
	}
	data.Queue = queue

	h.render(w, http.StatusOK, "dashboard", data)
}

type filterOption struct {
	Status model.OrderStatus
	Label  string
	Count  int
	Active bool
	URL    string
}

type ordersPage struct {
	basePage
	Filter  model.OrderStatus
	Query   string
	Page    viewmodel.OrderPage
	Filters []filterOption
}

// OrdersPage отображает отфильтрованный постраничный список заказов.
// Смена фильтра или поискового запроса начинает просмотр с первой страницы;
// номер страницы сохраняется только при постраничной навигации.
func (h *Handler) OrdersPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, ok := lifecycle.ParseStatus(q.Get("filter"))
	if !ok {
		filter = model.OrderStatusPending
	}
	query := q.Get("q")
	pageNum, err := strconv.Atoi(q.Get("page"))
	if err != nil {
		pageNum = 1
	}

	data := ordersPage{
		basePage: basePage{User: h.currentUser(), Retry: ordersURL(filter, query, pageNum)},
		Filter:   filter,
		Query:    query,
	}

	orders, err := h.service.Orders(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("orders fetch error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "orders", data)
		return
	}

	data.Page = viewmodel.BuildOrderPage(orders, filter, query, pageNum)

	for _, status := range []model.OrderStatus{
		model.OrderStatusPending,
		model.OrderStatusInProgress,
		model.OrderStatusComplete,
	} {
		data.Filters = append(data.Filters, filterOption{
			Status: status,
			Label:  lifecycle.LabelFor(lifecycle.ViewFilter, status),
			Count:  viewmodel.CountByStatus(orders, status),
			Active: status == filter,
			URL:    ordersURL(status, query, 1),
		})
	}

	h.render(w, http.StatusOK, "orders", data)
}

type orderDetailPage struct {
	basePage
	Order *model.Order
}

// OrderDetailPage отображает карточку одного мешка.
func (h *Handler) OrderDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	data := orderDetailPage{basePage: basePage{
		User:  h.currentUser(),
		Error: r.URL.Query().Get("err"),
		Retry: r.URL.Path,
	}}

	order, err := h.service.Order(r.Context(), id)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("order fetch error", zap.Error(err), zap.Int64("orderID", id))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "order_detail", data)
		return
	}

	data.Order = order
	h.render(w, http.StatusOK, "order_detail", data)
}

// AdvanceOrder переводит заказ на следующий шаг цикла. При любой ошибке
// локальное состояние не меняется: карточка перечитает статус с бэкенда,
// а сообщение об ошибке показывается рядом с кнопкой.
func (h *Handler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	detailURL := "/orders/" + strconv.FormatInt(id, 10)

	next, err := h.service.AdvanceOrder(r.Context(), id)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}

		msg := gateway.Message(err)
		if errors.Is(err, service.ErrNotAdvanceable) {
			msg = "Order is already complete"
		}
		h.logger.Error("advance order error", zap.Error(err), zap.Int64("orderID", id))
		http.Redirect(w, r, detailURL+"?err="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}

	h.logger.Info("order advanced via panel",
		zap.Int64("orderID", id),
		zap.String("status", string(next)))
	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

// UpdateNotes сохраняет заметки работника к заказу.
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	detailURL := "/orders/" + strconv.FormatInt(id, 10)

	if _, err := h.service.UpdateNotes(r.Context(), id, r.PostFormValue("notes")); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("update notes error", zap.Error(err), zap.Int64("orderID", id))
		http.Redirect(w, r, detailURL+"?err="+url.QueryEscape(gateway.Message(err)), http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, detailURL, http.StatusSeeOther)
}

type studentsPage struct {
	basePage
	Query    string
	Students []viewmodel.StudentSummary
}

// StudentsPage отображает агрегированный список студентов.
func (h *Handler) StudentsPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	data := studentsPage{
		basePage: basePage{User: h.currentUser(), Retry: "/students"},
		Query:    query,
	}

	students, err := h.service.Students(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("students fetch error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "students", data)
		return
	}

	data.Students = viewmodel.FilterStudents(students, query)
	h.render(w, http.StatusOK, "students", data)
}

type studentDetailPage struct {
	basePage
	Student       *viewmodel.StudentDetails
	DisplayOrders []model.Order
	HiddenOrders  int
}

// StudentDetailPage отображает сводку студента и историю его заказов.
func (h *Handler) StudentDetailPage(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	data := studentDetailPage{basePage: basePage{User: h.currentUser(), Retry: r.URL.Path}}

	details, err := h.service.StudentDetails(r.Context(), name)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		if errors.Is(err, viewmodel.ErrStudentNotFound) {
			data.Error = "Student not found"
			h.render(w, http.StatusNotFound, "student_detail", data)
			return
		}
		h.logger.Error("student details error", zap.Error(err), zap.String("student", name))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "student_detail", data)
		return
	}

	data.Student = details
	data.DisplayOrders = details.Orders
	if len(details.Orders) > studentOrdersDisplayLimit {
		data.DisplayOrders = details.Orders[:studentOrdersDisplayLimit]
		data.HiddenOrders = len(details.Orders) - studentOrdersDisplayLimit
	}
	h.render(w, http.StatusOK, "student_detail", data)
}

type bagPage struct {
	basePage
	BagNo   string
	Student *model.Student
	Orders  []model.Order
}

// BagLookupPage отображает карточку студента из справочника бэкенда и его
// заказы по номеру мешка.
func (h *Handler) BagLookupPage(w http.ResponseWriter, r *http.Request) {
	bagNo, err := url.PathUnescape(chi.URLParam(r, "bagNo"))
	if err != nil || bagNo == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	data := bagPage{
		basePage: basePage{User: h.currentUser(), Retry: r.URL.Path},
		BagNo:    bagNo,
	}

	student, err := h.service.StudentByBag(r.Context(), bagNo)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("student lookup error", zap.Error(err), zap.String("bagNo", bagNo))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "bag", data)
		return
	}
	data.Student = student

	orders, err := h.service.StudentOrdersByBag(r.Context(), bagNo)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("student orders error", zap.Error(err), zap.String("bagNo", bagNo))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "bag", data)
		return
	}
	data.Orders = orders

	h.render(w, http.StatusOK, "bag", data)
}

type statisticsPage struct {
	basePage
	Stats     *model.OrderStatistics
	StartDate string
	EndDate   string
}

// StatisticsPage отображает временные ряды за выбранный период.
// По умолчанию показываются последние тридцать дней.
func (h *Handler) StatisticsPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	endDate := q.Get("endDate")
	if endDate == "" {
		endDate = time.Now().Format("2006-01-02")
	}
	startDate := q.Get("startDate")
	if startDate == "" {
		startDate = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}

	data := statisticsPage{
		basePage:  basePage{User: h.currentUser(), Retry: "/statistics"},
		StartDate: startDate,
		EndDate:   endDate,
	}

	stats, err := h.service.Statistics(r.Context(), startDate, endDate)
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("statistics fetch error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "statistics", data)
		return
	}

	data.Stats = stats
	h.render(w, http.StatusOK, "statistics", data)
}

type settingsPage struct {
	basePage
}

// SettingsPage отображает форму смены пароля.
func (h *Handler) SettingsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "settings", settingsPage{
		basePage: basePage{User: h.currentUser(), Flash: r.URL.Query().Get("ok")},
	})
}

// ChangePassword меняет пароль работника. Подтверждение должно совпадать с
// новым паролем; минимальную длину проверяет сервис.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	current := r.PostFormValue("currentPassword")
	next := r.PostFormValue("newPassword")
	confirm := r.PostFormValue("confirmPassword")

	data := settingsPage{basePage: basePage{User: h.currentUser()}}

	if next != confirm {
		data.Error = "New passwords do not match"
		h.render(w, http.StatusOK, "settings", data)
		return
	}

	if err := h.service.ChangePassword(r.Context(), current, next); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.logger.Error("change password error", zap.Error(err))
		data.Error = gateway.Message(err)
		h.render(w, http.StatusOK, "settings", data)
		return
	}

	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("Password updated successfully"), http.StatusSeeOther)
}
