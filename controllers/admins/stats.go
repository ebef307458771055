package admins

import (
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/database"
	"github.com/ducnguyen0213/lucky-wheel-all/models"
	"github.com/ducnguyen0213/lucky-wheel-all/utils"
)

// dateRange reads optional ?from=YYYY-MM-DD&to=YYYY-MM-DD filters. The "to"
// bound is exclusive at the following midnight so a single-day range covers
// the whole day.
func dateRange(r *http.Request) (from, to time.Time, ok bool) {
	const layout = "2006-01-02"
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err != nil {
			return from, to, false
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.ParseInLocation(layout, v, time.Local)
		if err != nil {
			return from, to, false
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, true
}

func applyDateRange(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("spins.created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("spins.created_at < ?", to)
	}
	return q
}

// GET /admin/spins
func ListSpins(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "from/to must be YYYY-MM-DD",
		})
		return
	}

	db := database.DB.WithContext(r.Context())
	page, limit, offset := utils.PageParams(r)

	q := applyDateRange(db.Model(&models.Spin{}), from, to)
	if r.URL.Query().Get("wins_only") == "true" {
		q = q.Where("is_win = ?", true)
	}

	var totalItems int64
	q.Count(&totalItems)

	var spins []models.Spin
	if err := q.Preload("User").Preload("Prize").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&spins).Error; err != nil {
		log.Printf("[stats] spin list failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success:    true,
		Message:    "Successfully",
		Pagination: utils.NewPagination(totalItems, page, limit),
		Data:       spins,
	})
}

type prizeBreakdown struct {
	PrizeID           uint    `json:"prize_id"`
	Name              string  `json:"name"`
	TimesWon          int64   `json:"times_won"`
	OriginalQuantity  int     `json:"original_quantity"`
	RemainingQuantity int     `json:"remaining_quantity"`
	Probability       float64 `json:"probability"`
}

type statsResponse struct {
	TotalSpins  int64            `json:"total_spins"`
	TotalWins   int64            `json:"total_wins"`
	WinRate     float64          `json:"win_rate"`
	UniqueUsers int64            `json:"unique_users"`
	Prizes      []prizeBreakdown `json:"prizes"`
}

// GET /admin/stats
// Aggregate view for the dashboard: totals, win rate and the per-prize
// win/stock breakdown, over an optional date range.
func GetStats(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRange(r)
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
			Success: false, Message: "from/to must be YYYY-MM-DD",
		})
		return
	}

	db := database.DB.WithContext(r.Context())

	var stats statsResponse
	base := applyDateRange(db.Model(&models.Spin{}), from, to)
	if err := base.Count(&stats.TotalSpins).Error; err != nil {
		log.Printf("[stats] spin count failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}
	applyDateRange(db.Model(&models.Spin{}), from, to).
		Where("is_win = ?", true).Count(&stats.TotalWins)
	applyDateRange(db.Model(&models.Spin{}), from, to).
		Distinct("user_id").Count(&stats.UniqueUsers)

	if stats.TotalSpins > 0 {
		stats.WinRate = utils.RoundFloat(float64(stats.TotalWins)/float64(stats.TotalSpins)*100, 2)
	}

	var prizes []models.Prize
	if err := db.Order("id ASC").Find(&prizes).Error; err != nil {
		log.Printf("[stats] prize list failed: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false, Message: "Something went wrong, please try again",
		})
		return
	}

	type winCount struct {
		PrizeID  uint
		TimesWon int64
	}
	var counts []winCount
	applyDateRange(db.Model(&models.Spin{}), from, to).
		Select("prize_id, COUNT(*) AS times_won").
		Where("is_win = ?", true).
		Group("prize_id").
		Scan(&counts)
	wonByPrize := make(map[uint]int64, len(counts))
	for _, c := range counts {
		wonByPrize[c.PrizeID] = c.TimesWon
	}

	stats.Prizes = make([]prizeBreakdown, 0, len(prizes))
	for _, p := range prizes {
		stats.Prizes = append(stats.Prizes, prizeBreakdown{
			PrizeID:           p.ID,
			Name:              p.Name,
			TimesWon:          wonByPrize[p.ID],
			OriginalQuantity:  p.OriginalQuantity,
			RemainingQuantity: p.RemainingQuantity,
			Probability:       p.Probability,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true, Message: "Successfully", Data: stats,
	})
}
