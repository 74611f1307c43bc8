package helpers

import (
	"testing"
	"time"

	"github.com/blogforge/blogforge/internal/domain/entity"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func testUser() *entity.User {
	return &entity.User{
		ID:       42,
		Username: "alice",
		Email:    "alice@example.com",
		Role:     entity.RoleUser,
	}
}

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager(testSecret, 24*time.Hour)

	token, exp, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}
	if until := time.Until(exp); until < 23*time.Hour || until > 24*time.Hour {
		t.Errorf("expiry = %v from now, want ~24h", until)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	ident := claims.Identity()
	if ident.ID != 42 || ident.Username != "alice" || ident.Email != "alice@example.com" {
		t.Errorf("Identity() = %+v, want issued values", ident)
	}
	if ident.Role != entity.RoleUser {
		t.Errorf("Identity().Role = %s, want USER", ident.Role)
	}
	if ident.IsAnonymous() {
		t.Error("parsed identity reports anonymous")
	}
}

func TestParse_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, -time.Minute)

	token, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Error("Parse() accepted an expired token")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)
	token, _, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := &TokenManager{Secret: []byte("another-secret-also-32-chars-long!!"), TTL: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Error("Parse() accepted a token signed with a different secret")
	}
}

func TestParse_Garbage(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Parse(tok); err == nil {
			t.Errorf("Parse(%q) accepted garbage", tok)
		}
	}
}

// A token embeds the role held at issuance; changing the stored role does
// not alter what the token reports until it expires.
func TestRoleStaleness(t *testing.T) {
	m := NewTokenManager(testSecret, time.Hour)

	u := testUser()
	token, _, err := m.Issue(u)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	u.Role = entity.RoleAdmin // store-side promotion after issuance

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if claims.Role != entity.RoleUser {
		t.Errorf("token role = %s, want the issuance-time role USER", claims.Role)
	}
}
