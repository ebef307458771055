package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// Mailer sends the "you used all your spins today" summary listing the real
// prizes the user won. It implements Notifier and runs entirely off the spin
// transaction path: QuotaReached returns immediately and failures are only
// logged.
type Mailer struct {
	db     *gorm.DB
	spins  *SpinStore
	dialer *gomail.Dialer
	from   string
}

// NewMailerFromEnv builds a Mailer from SMTP_* env vars. Returns nil when
// SMTP_HOST is unset, which disables notifications.
func NewMailerFromEnv(db *gorm.DB) *Mailer {
	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		log.Println("[mailer] SMTP_HOST not set, winner notifications disabled")
		return nil
	}
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return &Mailer{
		db:     db,
		spins:  NewSpinStore(db),
		dialer: gomail.NewDialer(host, port, user, os.Getenv("SMTP_PASS")),
		from:   from,
	}
}

// QuotaReached fires the winner summary for the user in the background.
func (m *Mailer) QuotaReached(userID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.sendWinnerSummary(ctx, userID); err != nil {
			log.Printf("[mailer] winner summary for user %d failed: %v", userID, err)
		}
	}()
}

func (m *Mailer) sendWinnerSummary(ctx context.Context, userID uint) error {
	var user models.User
	if err := m.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return err
	}
	if user.Email == "" {
		return nil
	}

	wins, err := m.spins.WinningSpinsSince(ctx, userID, StartOfDay(time.Now()))
	if err != nil {
		return err
	}
	if len(wins) == 0 {
		return nil
	}

	var list strings.Builder
	for _, spin := range wins {
		if spin.Prize == nil {
			continue
		}
		list.WriteString("- " + spin.Prize.Name)
		if spin.Prize.Description != "" {
			list.WriteString(": " + spin.Prize.Description)
		}
		list.WriteString("\n")
	}

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Congratulations! You won the following prizes on today's lucky wheel:\n\n%s\n"+
			"We will contact you at %s shortly with instructions to claim them.\n\n"+
			"Thank you for playing.\n",
		user.Name, list.String(), user.Phone)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", "[Lucky Wheel] Congratulations, you won!")
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}
