package models

import (
	"strings"
	"testing"
)

func TestCreateUser(t *testing.T) {
	t.Parallel()

	user, err := CreateUser("alice", "Alice", "alice@example.com", "s3cretpw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Password == "s3cretpw" {
		t.Fatalf("password must be stored hashed")
	}
	if !CheckPasswordHash("s3cretpw", user.Password) {
		t.Fatalf("hashed password must verify against the original")
	}
	if CheckPasswordHash("wrong", user.Password) {
		t.Fatalf("wrong password must not verify")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		username string
		fullName string
		email    string
		password string
	}{
		{"short username", "ab", "Alice", "alice@example.com", "s3cretpw"},
		{"missing name", "alice", "", "alice@example.com", "s3cretpw"},
		{"bad email", "alice", "Alice", "not-an-email", "s3cretpw"},
		{"short password", "alice", "Alice", "alice@example.com", "short"},
		{"long username", strings.Repeat("a", 101), "Alice", "alice@example.com", "s3cretpw"},
	}
	for _, tc := range cases {
		if _, err := CreateUser(tc.username, tc.fullName, tc.email, tc.password); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
