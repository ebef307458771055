package controllers

import (
	"net/http"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// GET /prizes
// Public wheel face: active prizes only. Stock and probability are included
// so the frontend can render slice sizes; the draw itself never trusts this
// endpoint.
func GetActivePrizes(w http.ResponseWriter, r *http.Request) {
	var prizes []models.Prize
	if err := database.DB.WithContext(r.Context()).
		Where("active = ?", true).
		Order("id ASC").
		Find(&prizes).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to load prizes",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    prizes,
	})
}
