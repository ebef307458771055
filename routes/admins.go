package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ducnguyen0213/lucky-wheel-all/controllers/admins"
	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
)

func SetAdminRoutes(api *mux.Router) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter("admin_login", 5, time.Minute)

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admins.LoginHandler))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	// Prize management
	adminRouter.Handle("/prizes", http.HandlerFunc(admins.ListPrizes)).Methods(http.MethodGet)
	adminRouter.Handle("/prizes", http.HandlerFunc(admins.CreatePrize)).Methods(http.MethodPost)
	adminRouter.Handle("/prizes/upload", http.HandlerFunc(admins.UploadPrizeImageHandler)).Methods(http.MethodPost)
	adminRouter.Handle("/prizes/{id:[0-9]+}", http.HandlerFunc(admins.GetPrize)).Methods(http.MethodGet)
	adminRouter.Handle("/prizes/{id:[0-9]+}", http.HandlerFunc(admins.UpdatePrize)).Methods(http.MethodPut)
	adminRouter.Handle("/prizes/{id:[0-9]+}", http.HandlerFunc(admins.DeletePrize)).Methods(http.MethodDelete)

	// Player management
	adminRouter.Handle("/users", http.HandlerFunc(admins.ListUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/export", http.HandlerFunc(admins.ExportUsers)).Methods(http.MethodGet)
	adminRouter.Handle("/users/{id:[0-9]+}", http.HandlerFunc(admins.GetUser)).Methods(http.MethodGet)

	// Spin ledger and aggregates
	adminRouter.Handle("/spins", http.HandlerFunc(admins.ListSpins)).Methods(http.MethodGet)
	adminRouter.Handle("/stats", http.HandlerFunc(admins.GetStats)).Methods(http.MethodGet)
}
