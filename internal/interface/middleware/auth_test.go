package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/pkg/helpers"
)

func authTestRouter(tokens *helpers.TokenManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	echo := func(c *gin.Context) {
		ident := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": ident.Username, "anonymous": ident.IsAnonymous()})
	}
	r.GET("/required", RequireAuth(tokens), echo)
	r.GET("/optional", OptionalAuth(tokens), echo)
	return r
}

func get(r *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	tokens := helpers.NewTokenManager("secret", time.Hour)
	r := authTestRouter(tokens)

	token, _, err := tokens.Issue(&entity.User{ID: 7, Username: "alice", Role: entity.RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/required", tt.header)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	t.Run("identity injected", func(t *testing.T) {
		w := get(r, "/required", "Bearer "+token)
		if !strings.Contains(w.Body.String(), `"username":"alice"`) {
			t.Errorf("body = %s, want alice identity", w.Body.String())
		}
	})

	t.Run("expired token", func(t *testing.T) {
		stale := helpers.TokenManager{Secret: []byte("secret"), TTL: -time.Minute}
		old, _, err := stale.Issue(&entity.User{ID: 7, Username: "alice"})
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if w := get(r, "/required", "Bearer "+old); w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	tokens := helpers.NewTokenManager("secret", time.Hour)
	r := authTestRouter(tokens)

	token, _, err := tokens.Issue(&entity.User{ID: 7, Username: "alice", Role: entity.RoleUser})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name      string
		header    string
		anonymous bool
	}{
		{"no header", "", true},
		{"bad token still anonymous", "Bearer nope", true},
		{"valid token", "Bearer " + token, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/optional", tt.header)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			want := `"anonymous":false`
			if tt.anonymous {
				want = `"anonymous":true`
			}
			if !strings.Contains(w.Body.String(), want) {
				t.Errorf("body = %s, want %s", w.Body.String(), want)
			}
		})
	}
}

func TestIdentityFromFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := IdentityFrom(c); !got.IsAnonymous() {
		t.Errorf("IdentityFrom(empty context) = %+v, want anonymous", got)
	}

	c.Set(CtxIdentityKey, "not an identity")
	if got := IdentityFrom(c); !got.IsAnonymous() {
		t.Errorf("IdentityFrom(mistyped value) = %+v, want anonymous", got)
	}
}
