package users

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/services"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// SpinController exposes the spin engine over HTTP.
type SpinController struct {
	db    *gorm.DB
	svc   *services.SpinService
	users *services.UserStore
}

func NewSpinController(db *gorm.DB, notifier services.Notifier) *SpinController {
	return &SpinController{
		db:    db,
		svc:   services.NewSpinService(services.NewPrizeStore(db), services.NewUserStore(db), services.NewSpinStore(db), notifier),
		users: services.NewUserStore(db),
	}
}

type spinRequest struct {
	UserID uint `json:"user_id"`
}

type spinOutcome struct {
	PrizeID   *uint  `json:"prize_id"`
	PrizeName string `json:"prize_name,omitempty"`
}

type spinResponse struct {
	Outcome        spinOutcome `json:"outcome"`
	IsWin          bool        `json:"is_win"`
	RemainingSpins int         `json:"remaining_spins"`
}

// POST /spins
func (c *SpinController) Spin(w http.ResponseWriter, r *http.Request) {
	var req spinRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.UserID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "user_id is required",
		})
		return
	}

	result, err := c.svc.Spin(r.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuotaExceeded):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false, Message: "You have no spins remaining today",
			})
		case errors.Is(err, services.ErrUserNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false, Message: "User not found",
			})
		default:
			log.Printf("[spin] user %d: %v", req.UserID, err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false, Message: "Something went wrong, please try again",
			})
		}
		return
	}

	resp := spinResponse{
		IsWin:          result.IsWin,
		RemainingSpins: result.RemainingSpins,
	}
	if result.Prize != nil {
		id := result.Prize.ID
		resp.Outcome = spinOutcome{PrizeID: &id, PrizeName: result.Prize.Name}
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    resp,
	})
}

// GET /spins/user/{id}
// Paginated spin history for one player, with the rollover-aware remaining
// count the frontend shows next to the wheel.
func (c *SpinController) UserSpins(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid user ID",
		})
		return
	}
	userID := uint(id)

	db := c.db.WithContext(r.Context())

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false, Message: "User not found",
			})
			return
		}
		log.Printf("[spin] user lookup failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	page, limit, offset := utils.PageParams(r)

	var totalItems int64
	db.Model(&models.Spin{}).Where("user_id = ?", userID).Count(&totalItems)

	var spins []models.Spin
	if err := db.Preload("Prize").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&spins).Error; err != nil {
		log.Printf("[spin] history query failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:    true,
		Message:    "Successfully",
		Pagination: utils.NewPagination(totalItems, page, limit),
		Data: map[string]interface{}{
			"user":            user,
			"spins":           spins,
			"remaining_spins": c.users.RemainingSpins(&user, time.Now()),
		},
	})
}
