package models

import (
	"strings"
	"testing"
)

func TestAdminPasswordHashing(t *testing.T) {
	admin := Admin{Email: "admin@example.com", Password: "s3cret-pass"}

	if err := admin.HashPassword(); err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if admin.Password == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if !strings.HasPrefix(admin.Password, "$2") {
		t.Fatalf("not a bcrypt hash: %q", admin.Password)
	}

	if !admin.ValidatePassword("s3cret-pass") {
		t.Fatal("correct password rejected")
	}
	if admin.ValidatePassword("wrong-pass") {
		t.Fatal("wrong password accepted")
	}
}
