package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"moneywise/internal/auth"
	"moneywise/internal/logx"
	"moneywise/internal/service"
)

type API struct {
	Auth            *auth.Manager
	AuthSvc         *service.AuthService
	Categories      *service.CategoryService
	Transactions    *service.TransactionService
	Alerts          *service.AlertService
	Recommendations *service.RecommendationService
	Dashboard       *service.DashboardService
	Reports         *service.ReportService
	Chat            *service.ChatService
	Origins         []string
	AIAllowedUserID string
	Log             *logx.Logger
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(a.loggingMiddleware)
	r.Use(a.corsMiddleware)

	r.Get("/health", a.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", a.handleRegister)
			r.Post("/login", a.handleLogin)
			r.Post("/forgot-password", a.handleForgotPassword)
			r.Post("/reset-password", a.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(a.authMiddleware)
				r.Post("/logout", a.handleLogout)
				r.Get("/me", a.handleMe)
				r.Put("/profile", a.handleUpdateProfile)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(a.authMiddleware)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", a.handleListCategories)
				r.Post("/", a.handleCreateCategory)
				r.Get("/{id}", a.handleGetCategory)
				r.Put("/{id}", a.handleUpdateCategory)
				r.Delete("/{id}", a.handleDeleteCategory)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", a.handleListTransactions)
				r.Post("/", a.handleCreateTransaction)
				r.Get("/{id}", a.handleGetTransaction)
				r.Put("/{id}", a.handleUpdateTransaction)
				r.Delete("/{id}", a.handleDeleteTransaction)
				r.Post("/{id}/restore", a.handleRestoreTransaction)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", a.handleListAlerts)
				r.Post("/", a.handleCreateAlert)
				r.Get("/stats", a.handleAlertStats)
				r.Post("/generate", a.handleGenerateAlerts)
				r.Put("/{id}/read", a.handleMarkAlertRead)
			})

			r.Route("/recommendations", func(r chi.Router) {
				r.Get("/", a.handleListRecommendations)
				r.Post("/generate", a.handleGenerateRecommendations)
				r.Delete("/{id}", a.handleDeleteRecommendation)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/overview", a.handleDashboardOverview)
				r.Get("/expenses-by-category", a.handleExpensesByCategory)
				r.Get("/monthly-trends", a.handleMonthlyTrends)
				r.Get("/global-budget", a.handleGlobalBudget)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/", a.handleListReports)
				r.Post("/", a.handleGenerateReport)
				r.Post("/generate-data", a.handleGenerateReportData)
				r.Get("/export/{id}", a.handleExportReport)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Use(a.aiAccessMiddleware)
				r.Post("/messages", a.handleSendChatMessage)
				r.Get("/messages", a.handleChatHistory)
				r.Delete("/messages", a.handleClearChat)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Route non trouvée")
	})

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
