package admins

import (
	"errors"
	"log"
	"net/http"
	"os"

	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /admin/login
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var admin models.Admin
	if err := database.DB.Where("email = ?", req.Email).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false, Message: "Invalid email or password",
			})
			return
		}
		log.Printf("[admin] login lookup failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	if !admin.ValidatePassword(req.Password) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false, Message: "Invalid email or password",
		})
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID, admin.Email)
	if err != nil {
		log.Printf("[admin] token generation failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"token": token,
			"admin": admin,
		},
	})
}

// SeedDefaultAdmin creates the bootstrap admin account when the table is
// empty. Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedDefaultAdmin(db *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}

	var count int64
	if err := db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		log.Printf("[admin] seed check failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	admin := models.Admin{
		Email:    email,
		Password: password,
		Name:     "Administrator",
	}
	if err := admin.HashPassword(); err != nil {
		log.Printf("[admin] seed hash failed: %v", err)
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[admin] seed create failed: %v", err)
		return
	}
	log.Printf("[admin] seeded default admin %s", email)
}
