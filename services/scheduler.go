package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// StartReportScheduler runs the periodic operational report: spin volume for
// the current day and prizes close to running out. It only reads, so it can
// never interfere with in-flight spin transactions. The caller owns the
// returned scheduler and shuts it down on exit.
func StartReportScheduler(db *gorm.DB) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			since := StartOfDay(time.Now())

			var totalSpins, totalWins int64
			db.Model(&models.Spin{}).Where("created_at >= ?", since).Count(&totalSpins)
			db.Model(&models.Spin{}).Where("created_at >= ? AND is_win = ?", since, true).Count(&totalWins)
			log.Printf("[scheduler] today so far: %d spins, %d wins", totalSpins, totalWins)

			var lowStock []models.Prize
			err := db.Where("active = ? AND remaining_quantity > 0 AND remaining_quantity <= ?", true, 5).
				Find(&lowStock).Error
			if err != nil {
				log.Printf("[scheduler] low stock query failed: %v", err)
				return
			}
			for _, p := range lowStock {
				log.Printf("[scheduler] prize %q almost exhausted: %d of %d left",
					p.Name, p.RemainingQuantity, p.OriginalQuantity)
			}
		}),
	)

	return sched, nil
}
