package admins

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/middleware"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

const maxPrizeImageBytes = 5 << 20

type prizeRequest struct {
	Name             string   `json:"name" validate:"required,max=120"`
	Description      string   `json:"description"`
	ImageURL         string   `json:"image_url"`
	Probability      *float64 `json:"probability" validate:"required"`
	OriginalQuantity *int     `json:"original_quantity" validate:"required"`
	Active           *bool    `json:"active"`
	IsRealPrize      *bool    `json:"is_real_prize"`
}

func prizeIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

// activeProbabilitySum totals the win weights of active prizes, excluding
// one prize ID when checking an update against the pool it will rejoin.
func activeProbabilitySum(db *gorm.DB, excludeID uint) (float64, error) {
	var sum float64
	q := db.Model(&models.Prize{}).Where("active = ?", true)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Select("COALESCE(SUM(probability), 0)").Scan(&sum).Error
	return sum, err
}

// GET /admin/prizes
func ListPrizes(w http.ResponseWriter, r *http.Request) {
	db := database.DB.WithContext(r.Context())
	page, limit, offset := utils.PageParams(r)

	var totalItems int64
	db.Model(&models.Prize{}).Count(&totalItems)

	var prizes []models.Prize
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&prizes).Error; err != nil {
		log.Printf("[prize] list failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:    true,
		Message:    "Successfully",
		Pagination: utils.NewPagination(totalItems, page, limit),
		Data:       prizes,
	})
}

// GET /admin/prizes/{id}
func GetPrize(w http.ResponseWriter, r *http.Request) {
	id, err := prizeIDFromPath(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid prize ID",
		})
		return
	}

	var prize models.Prize
	if err := database.DB.WithContext(r.Context()).First(&prize, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false, Message: "Prize not found",
			})
			return
		}
		log.Printf("[prize] get failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true, Message: "Successfully", Data: prize,
	})
}

// POST /admin/prizes
// A new prize starts with its full stock: remaining quantity mirrors the
// original quantity and is only drawn down by spins from then on.
func CreatePrize(w http.ResponseWriter, r *http.Request) {
	var req prizeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if *req.Probability < 0 || *req.Probability > 100 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "probability must be between 0 and 100",
		})
		return
	}
	if *req.OriginalQuantity < 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "original_quantity must not be negative",
		})
		return
	}

	db := database.DB.WithContext(r.Context())

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if active {
		sum, err := activeProbabilitySum(db, 0)
		if err != nil {
			log.Printf("[prize] probability sum failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false, Message: "Something went wrong, please try again",
			})
			return
		}
		if sum+*req.Probability > 100 {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false, Message: "total probability of active prizes cannot exceed 100",
			})
			return
		}
	}

	prize := models.Prize{
		Name:              req.Name,
		Description:       req.Description,
		ImageURL:          req.ImageURL,
		Probability:       *req.Probability,
		OriginalQuantity:  *req.OriginalQuantity,
		RemainingQuantity: *req.OriginalQuantity,
		Active:            active,
		IsRealPrize:       req.IsRealPrize == nil || *req.IsRealPrize,
	}
	if err := db.Create(&prize).Error; err != nil {
		log.Printf("[prize] create failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true, Message: "Successfully", Data: prize,
	})
}

type prizeUpdateRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	ImageURL         *string  `json:"image_url"`
	Probability      *float64 `json:"probability"`
	OriginalQuantity *int     `json:"original_quantity"`
	Active           *bool    `json:"active"`
	IsRealPrize      *bool    `json:"is_real_prize"`
}

// PUT /admin/prizes/{id}
// Restocking goes through original_quantity: the difference against the
// stored value is applied to remaining_quantity as well, so raising the
// original by 10 adds 10 units of live stock without touching what was
// already handed out.
func UpdatePrize(w http.ResponseWriter, r *http.Request) {
	id, err := prizeIDFromPath(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid prize ID",
		})
		return
	}

	var req prizeUpdateRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.Probability != nil && (*req.Probability < 0 || *req.Probability > 100) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "probability must be between 0 and 100",
		})
		return
	}

	db := database.DB.WithContext(r.Context())

	var prize models.Prize
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prize, id).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prize.Name = *req.Name
		}
		if req.Description != nil {
			prize.Description = *req.Description
		}
		if req.ImageURL != nil {
			prize.ImageURL = *req.ImageURL
		}
		if req.Probability != nil {
			prize.Probability = *req.Probability
		}
		if req.Active != nil {
			prize.Active = *req.Active
		}
		if req.IsRealPrize != nil {
			prize.IsRealPrize = *req.IsRealPrize
		}
		if req.OriginalQuantity != nil {
			delta := *req.OriginalQuantity - prize.OriginalQuantity
			prize.OriginalQuantity = *req.OriginalQuantity
			prize.RemainingQuantity += delta
			if prize.RemainingQuantity < 0 {
				prize.RemainingQuantity = 0
			}
		}

		if prize.Active {
			sum, err := activeProbabilitySum(tx, prize.ID)
			if err != nil {
				return err
			}
			if sum+prize.Probability > 100 {
				return errProbabilityOverflow
			}
		}

		return tx.Save(&prize).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
				Success: false, Message: "Prize not found",
			})
		case errors.Is(err, errProbabilityOverflow):
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false, Message: "total probability of active prizes cannot exceed 100",
			})
		default:
			log.Printf("[prize] update failed: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
				Success: false, Message: "Something went wrong, please try again",
			})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true, Message: "Successfully", Data: prize,
	})
}

var errProbabilityOverflow = errors.New("active probability sum exceeds 100")

// DELETE /admin/prizes/{id}
func DeletePrize(w http.ResponseWriter, r *http.Request) {
	id, err := prizeIDFromPath(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid prize ID",
		})
		return
	}

	res := database.DB.WithContext(r.Context()).Delete(&models.Prize{}, id)
	if res.Error != nil {
		log.Printf("[prize] delete failed: %v", res.Error)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false, Message: "Prize not found",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true, Message: "Successfully",
	})
}

// POST /admin/prizes/upload
// Accepts a multipart "image" field and returns the public URL of the
// stored object. The prize record is updated separately by the client.
func UploadPrizeImageHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPrizeImageBytes); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "Invalid multipart form",
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "image file is required",
		})
		return
	}
	defer file.Close()

	if header.Size > maxPrizeImageBytes {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "image must be 5MB or smaller",
		})
		return
	}

	url, err := utils.UploadPrizeImage(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		log.Printf("[prize] image upload failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Image upload failed, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    map[string]string{"image_url": url},
	})
}
