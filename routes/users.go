package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ducnguyen0213/lucky-wheel-all/controllers"
	"github.com/ducnguyen0213/lucky-wheel-all/controllers/users"
	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
	"github.com/ducnguyen0213/lucky-wheel-all/services"
)

// UsersRoutes registers the public player-facing routes on the given
// subrouter.
func UsersRoutes(api *mux.Router, notifier services.Notifier) {
	// Registration + lookup: 60 per IP per 5 minutes
	registerLimiter := middleware.NewIPRateLimiter("register", 60, 5*time.Minute)
	// Spins are the hot path but still user-initiated clicks: 30 per IP
	// per minute absorbs shared NAT traffic without enabling scripting.
	spinLimiter := middleware.NewIPRateLimiter("spin", 30, time.Minute)

	spinController := users.NewSpinController(database.DB, notifier)

	// Wheel face
	api.Handle("/prizes", http.HandlerFunc(controllers.GetActivePrizes)).Methods(http.MethodGet)

	// Player registration / lookup
	api.Handle("/users", registerLimiter.Middleware(http.HandlerFunc(users.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/users/check", registerLimiter.Middleware(http.HandlerFunc(users.CheckUserHandler))).Methods(http.MethodPost)

	// Spin entry point and per-player history
	api.Handle("/spins", spinLimiter.Middleware(http.HandlerFunc(spinController.Spin))).Methods(http.MethodPost)
	api.Handle("/spins/user/{id:[0-9]+}", http.HandlerFunc(spinController.UserSpins)).Methods(http.MethodGet)
}
