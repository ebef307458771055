package users

import (
	"errors"
	"testing"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

func TestResolveContact(t *testing.T) {
	alice := models.User{ID: 1, Email: "alice@example.com", Phone: "0911111111"}
	bob := models.User{ID: 2, Email: "bob@example.com", Phone: "0922222222"}

	t.Run("no match", func(t *testing.T) {
		user, err := resolveContact(nil)
		if err != nil || user != nil {
			t.Fatalf("got user=%v err=%v, want nil, nil", user, err)
		}
	})

	t.Run("single match", func(t *testing.T) {
		user, err := resolveContact([]models.User{alice})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user == nil || user.ID != alice.ID {
			t.Fatalf("got %v, want user %d", user, alice.ID)
		}
	})

	t.Run("email and phone on different accounts", func(t *testing.T) {
		user, err := resolveContact([]models.User{alice, bob})
		if !errors.Is(err, errContactConflict) {
			t.Fatalf("got err=%v, want contact conflict", err)
		}
		if user != nil {
			t.Fatalf("conflict must not resolve to a user, got %v", user)
		}
	})
}
