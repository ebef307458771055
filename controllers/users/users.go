package users

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/services"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	CodeShop string `json:"code_shop" validate:"max=50"`
	Address  string `json:"address" validate:"max=500"`
}

// errContactConflict means the email and the phone each matched a different
// account; updating either row would collide with the other's unique index.
var errContactConflict = errors.New("email and phone belong to different accounts")

// findByContact resolves a player by email OR phone: either match returns the
// existing row.
func findByContact(db *gorm.DB, email, phone string) (*models.User, error) {
	var matches []models.User
	err := db.Where("email = ? OR phone = ?", email, phone).Limit(2).Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return resolveContact(matches)
}

// resolveContact maps the rows matching the submitted contact details to the
// single account they refer to. Email and phone are each unique, so two rows
// can only mean they point at different accounts.
func resolveContact(matches []models.User) (*models.User, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, errContactConflict
	}
}

// POST /users
// Find-or-create the player for the submitted contact details. Re-submitting
// with a known email or phone updates the profile instead of duplicating it.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.CodeShop == "" {
		req.CodeShop = "SHOP_DEFAULT"
	}

	db := database.DB.WithContext(r.Context())

	user, err := findByContact(db, req.Email, req.Phone)
	if err != nil {
		if errors.Is(err, errContactConflict) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false, Message: "Email and phone belong to different accounts",
			})
			return
		}
		log.Printf("[users] lookup failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	if user != nil {
		user.Name = req.Name
		user.Email = req.Email
		user.Phone = req.Phone
		user.CodeShop = req.CodeShop
		if req.Address != "" {
			user.Address = req.Address
		}
		if err := db.Save(user).Error; err != nil {
			log.Printf("[users] update failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false, Message: "Something went wrong, please try again",
			})
			return
		}
	} else {
		user = &models.User{
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			CodeShop:     req.CodeShop,
			Address:      req.Address,
			LastSpinDate: time.Now(),
		}
		if err := db.Create(user).Error; err != nil {
			log.Printf("[users] create failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false, Message: "Something went wrong, please try again",
			})
			return
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    user,
	})
}

type checkRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone"`
}

type checkResponse struct {
	Exists         bool         `json:"exists"`
	User           *models.User `json:"user,omitempty"`
	RemainingSpins int          `json:"remaining_spins"`
}

// POST /users/check
// Pre-spin lookup. Applies the same day-rollover read as the quota itself so
// a returning player never sees yesterday's exhausted counter, and rejects
// outright when today's quota is gone.
func CheckUserHandler(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	db := database.DB.WithContext(r.Context())
	user, err := findByContact(db, strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Phone))
	if err != nil {
		if errors.Is(err, errContactConflict) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false, Message: "Email and phone belong to different accounts",
			})
			return
		}
		log.Printf("[users] lookup failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	if user == nil {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
			Success: true,
			Message: "Successfully",
			Data:    checkResponse{Exists: false, RemainingSpins: services.DailySpinLimit},
		})
		return
	}

	remaining := services.NewUserStore(database.DB).RemainingSpins(user, time.Now())
	if remaining == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false,
			Message: "You have no spins remaining today",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    checkResponse{Exists: true, User: user, RemainingSpins: remaining},
	})
}
