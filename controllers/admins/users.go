package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/services"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// GET /admin/users
// Supports filtering by shop code and a free-text search over name, email
// and phone.
func ListUsers(w http.ResponseWriter, r *http.Request) {
	db := database.DB.WithContext(r.Context())
	page, limit, offset := utils.PageParams(r)

	q := db.Model(&models.User{})
	if shop := r.URL.Query().Get("code_shop"); shop != "" {
		q = q.Where("code_shop = ?", shop)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}

	var totalItems int64
	q.Count(&totalItems)

	var users []models.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		log.Printf("[user] list failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:    true,
		Message:    "Successfully",
		Pagination: utils.NewPagination(totalItems, page, limit),
		Data:       users,
	})
}

// GET /admin/users/{id}
func GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid user ID",
		})
		return
	}

	db := database.DB.WithContext(r.Context())

	var user models.User
	if err := db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false, Message: "User not found",
			})
			return
		}
		log.Printf("[user] get failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	var spins []models.Spin
	if err := db.Preload("Prize").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&spins).Error; err != nil {
		log.Printf("[user] spins query failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"user":            user,
			"spins":           spins,
			"remaining_spins": services.NewUserStore(database.DB).RemainingSpins(&user, time.Now()),
		},
	})
}

type exportRow struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CodeShop  string    `json:"code_shop"`
	TotalWins int64     `json:"total_wins"`
	Prizes    []string  `json:"prizes"`
	CreatedAt time.Time `json:"created_at"`
}

// GET /admin/users/export
// Flat winner listing for spreadsheet export: one row per user with every
// prize name they have won.
func ExportUsers(w http.ResponseWriter, r *http.Request) {
	db := database.DB.WithContext(r.Context())

	var users []models.User
	if err := db.Order("id ASC").Find(&users).Error; err != nil {
		log.Printf("[user] export query failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	var wins []models.Spin
	if err := db.Preload("Prize").Where("is_win = ?", true).Find(&wins).Error; err != nil {
		log.Printf("[user] export wins query failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	prizesByUser := make(map[uint][]string, len(users))
	for _, s := range wins {
		if s.Prize != nil {
			prizesByUser[s.UserID] = append(prizesByUser[s.UserID], s.Prize.Name)
		}
	}

	rows := make([]exportRow, 0, len(users))
	for _, u := range users {
		names := prizesByUser[u.ID]
		if names == nil {
			names = []string{}
		}
		rows = append(rows, exportRow{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Phone:     u.Phone,
			Address:   u.Address,
			CodeShop:  u.CodeShop,
			TotalWins: int64(len(names)),
			Prizes:    names,
			CreatedAt: u.CreatedAt,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true, Message: "Successfully", Data: rows,
	})
}
