package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/mmeshcher/washerman-panel/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware панели прачечной.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/login", h.LoginPage)
	r.Post("/login", h.LoginSubmit)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Get("/", h.DashboardPage)

		r.Get("/orders", h.OrdersPage)
		r.Get("/orders/{id}", h.OrderDetailPage)
		r.Post("/orders/{id}/advance", h.AdvanceOrder)
		r.Post("/orders/{id}/notes", h.UpdateNotes)

		r.Get("/students", h.StudentsPage)
		r.Get("/students/{name}", h.StudentDetailPage)
		r.Get("/bags/{bagNo}", h.BagLookupPage)

		r.Get("/statistics", h.StatisticsPage)

		r.Get("/settings", h.SettingsPage)
		r.Post("/settings/password", h.ChangePassword)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
