package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/application"
	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/policy"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/helpers"
	"github.com/blogforge/blogforge/pkg/validation"
)

var setupOnce sync.Once

// newTestServer wires the handlers onto a gin engine the way the router
// modules do, backed by in-memory repositories. Rate limiting, search and
// storage integrations are left out.
func newTestServer(t *testing.T) (*gin.Engine, *memUserRepo) {
	t.Helper()
	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		validation.Init()
	})

	users := newMemUserRepo()
	posts := newMemPostRepo()
	comments := newMemCommentRepo(posts)

	tokens := helpers.NewTokenManager("test-secret", time.Hour)
	pol := policy.Default()

	authH := NewAuthHandler(application.NewAuthService(users, tokens, nil, nil), nil)
	postH := NewPostHandler(application.NewPostService(posts, comments, pol, nil, nil, nil, ""), nil)
	commentH := NewCommentHandler(application.NewCommentService(comments, posts, pol, nil), nil)

	r := gin.New()
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)

	pub := api.Group("/posts", middleware.OptionalAuth(tokens))
	pub.GET("", postH.List)
	pub.GET("/:id", postH.Get)

	priv := api.Group("/posts", middleware.RequireAuth(tokens))
	priv.POST("", postH.Create)
	priv.PUT("/:id", postH.Update)
	priv.DELETE("/:id", postH.Delete)

	cpub := api.Group("/comments", middleware.OptionalAuth(tokens))
	cpub.GET("", commentH.List)
	cpub.GET("/:id", commentH.Get)

	cpriv := api.Group("/comments", middleware.RequireAuth(tokens))
	cpriv.POST("", commentH.Create)
	cpriv.DELETE("/:id", commentH.Delete)

	return r, users
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Kind string `json:"kind"`
	} `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v (body %q)", method, path, err, w.Body.String())
	}
	return w, env
}

func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": username, "password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("register %s: no token in %s", username, env.Data)
	}
	return data.Token
}

func seedAdmin(t *testing.T, users *memUserRepo, r *gin.Engine) string {
	t.Helper()
	hash, err := helpers.HashPassword("adminpass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := users.Create(&entity.User{Username: "root", PasswordHash: hash, Role: entity.RoleAdmin}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	w, env := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"usernameOrEmail": "root", "password": "adminpass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status %d", w.Code)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	return data.Token
}

func createPost(t *testing.T, r *gin.Engine, token, title string, published bool) int64 {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/posts", token, gin.H{
		"title": title, "content": "body of " + title, "published": published,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post %q: status %d, body %s", title, w.Code, w.Body.String())
	}
	var p struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &p); err != nil || p.ID == 0 {
		t.Fatalf("create post %q: bad data %s", title, env.Data)
	}
	return p.ID
}

func TestDraftVisibility(t *testing.T) {
	r, _ := newTestServer(t)
	token := register(t, r, "alice")

	id := createPost(t, r, token, "Draft", false)
	path := fmt.Sprintf("/api/posts/%d", id)

	t.Run("anonymous read denied", func(t *testing.T) {
		w, env := do(t, r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		if env.Error.Kind != string(apperr.Deny) {
			t.Errorf("kind = %q, want DENY", env.Error.Kind)
		}
	})

	t.Run("owner reads draft", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, path, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("other user denied", func(t *testing.T) {
		other := register(t, r, "mallory")
		w, env := do(t, r, http.MethodGet, path, other, nil)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		if env.Error.Kind != string(apperr.Deny) {
			t.Errorf("kind = %q, want DENY", env.Error.Kind)
		}
	})
}

func TestAdminPostInPublicListing(t *testing.T) {
	r, users := newTestServer(t)
	admin := seedAdmin(t, users, r)

	createPost(t, r, admin, "Announcement", true)

	w, env := do(t, r, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var posts []struct {
		Title     string `json:"title"`
		Published bool   `json:"published"`
	}
	if err := json.Unmarshal(env.Data, &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Announcement" || !posts[0].Published {
		t.Errorf("listing = %+v, want the published announcement", posts)
	}
}

func TestUpdateDeniedLeavesPostUnchanged(t *testing.T) {
	r, _ := newTestServer(t)
	owner := register(t, r, "alice")
	intruder := register(t, r, "bob")

	id := createPost(t, r, owner, "Original", true)
	path := fmt.Sprintf("/api/posts/%d", id)

	w, env := do(t, r, http.MethodPut, path, intruder, gin.H{"title": "Hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if env.Error.Kind != string(apperr.Deny) {
		t.Errorf("kind = %q, want DENY", env.Error.Kind)
	}

	_, env = do(t, r, http.MethodGet, path, owner, nil)
	var data struct {
		Post struct {
			Title string `json:"title"`
		} `json:"post"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Post.Title != "Original" {
		t.Errorf("title = %q, want unchanged %q", data.Post.Title, "Original")
	}
}

func TestCommentSurvivesUnpublish(t *testing.T) {
	r, _ := newTestServer(t)
	owner := register(t, r, "alice")
	reader := register(t, r, "bob")

	postID := createPost(t, r, owner, "Story", true)

	w, env := do(t, r, http.MethodPost, "/api/comments", reader, gin.H{
		"content": "great read", "postId": postID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d, body %s", w.Code, w.Body.String())
	}
	var comment struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}

	w, _ = do(t, r, http.MethodPut, fmt.Sprintf("/api/posts/%d", postID), owner, gin.H{"published": false})
	if w.Code != http.StatusOK {
		t.Fatalf("unpublish: status %d", w.Code)
	}

	t.Run("comment still retrievable by id", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, fmt.Sprintf("/api/comments/%d", comment.ID), "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("gone from public comment listing", func(t *testing.T) {
		_, env := do(t, r, http.MethodGet, fmt.Sprintf("/api/comments?postId=%d", postID), "", nil)
		var comments []json.RawMessage
		if err := json.Unmarshal(env.Data, &comments); err != nil && string(env.Data) != "" {
			t.Fatalf("decode: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("public listing has %d comments, want 0", len(comments))
		}
	})

	t.Run("post gone from public listing", func(t *testing.T) {
		_, env := do(t, r, http.MethodGet, "/api/posts", "", nil)
		var posts []json.RawMessage
		if err := json.Unmarshal(env.Data, &posts); err != nil && string(env.Data) != "" {
			t.Fatalf("decode: %v", err)
		}
		if len(posts) != 0 {
			t.Errorf("public listing has %d posts, want 0", len(posts))
		}
	})

	t.Run("new comment refused", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/comments", reader, gin.H{
			"content": "late", "postId": postID,
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		if env.Error.Kind != string(apperr.InvalidTarget) {
			t.Errorf("kind = %q, want INVALID_TARGET", env.Error.Kind)
		}
	})
}

func TestAuthRequiredOnMutations(t *testing.T) {
	r, _ := newTestServer(t)

	tests := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/api/posts", gin.H{"title": "t", "content": "c"}},
		{http.MethodPut, "/api/posts/1", gin.H{"title": "t"}},
		{http.MethodDelete, "/api/posts/1", nil},
		{http.MethodPost, "/api/comments", gin.H{"content": "c", "postId": 1}},
		{http.MethodDelete, "/api/comments/1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w, env := do(t, r, tt.method, tt.path, "", tt.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if env.Error.Kind != string(apperr.AuthMissing) {
				t.Errorf("kind = %q, want AUTH_MISSING", env.Error.Kind)
			}
		})
	}
}

func TestRegisterValidationAndConflict(t *testing.T) {
	r, _ := newTestServer(t)
	register(t, r, "alice")

	t.Run("duplicate username", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
			"username": "alice", "password": "password123",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
		if env.Error.Kind != string(apperr.Conflict) {
			t.Errorf("kind = %q, want CONFLICT", env.Error.Kind)
		}
	})

	t.Run("short password", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
			"username": "carol", "password": "short",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("bad credentials on login", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
			"usernameOrEmail": "alice", "password": "wrong-password",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
		if env.Error.Kind != string(apperr.AuthInvalid) {
			t.Errorf("kind = %q, want AUTH_INVALID", env.Error.Kind)
		}
	})
}

func TestUnknownPostIs404NotPolicy(t *testing.T) {
	r, _ := newTestServer(t)
	token := register(t, r, "alice")

	w, env := do(t, r, http.MethodPut, "/api/posts/999", token, gin.H{"title": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if env.Error.Kind != string(apperr.NotFound) {
		t.Errorf("kind = %q, want NOT_FOUND", env.Error.Kind)
	}
}

// In-memory repositories for the route tests.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int64]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Username == u.Username || (u.Email != "" && e.Email == u.Email) {
			return apperr.New(apperr.Conflict, "user already exists")
		}
	}
	u.ID = r.nextID
	r.nextID++
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (r *memUserRepo) GetByLogin(v string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == v || (u.Email != "" && u.Email == v) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (r *memUserRepo) Exists(username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Update(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) List() ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memPostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*entity.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{nextID: 1, posts: map[int64]*entity.Post{}}
}

func (r *memPostRepo) Create(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(id int64) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "post not found")
}

func (r *memPostRepo) ListPublished() ([]entity.Post, error) {
	return r.list(func(p *entity.Post) bool { return p.Published })
}

func (r *memPostRepo) ListByAuthor(authorID int64) ([]entity.Post, error) {
	return r.list(func(p *entity.Post) bool { return p.AuthorID == authorID })
}

func (r *memPostRepo) list(keep func(*entity.Post) bool) ([]entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Post
	for _, p := range r.posts {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memPostRepo) Update(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return apperr.New(apperr.NotFound, "post not found")
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *memPostRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return apperr.New(apperr.NotFound, "post not found")
	}
	delete(r.posts, id)
	return nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]*entity.Comment
	posts    *memPostRepo
}

func newMemCommentRepo(posts *memPostRepo) *memCommentRepo {
	return &memCommentRepo{nextID: 1, comments: map[int64]*entity.Comment{}, posts: posts}
}

func (r *memCommentRepo) Create(c *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) GetByID(id int64) (*entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "comment not found")
}

func (r *memCommentRepo) ListByPost(postID int64) ([]entity.Comment, error) {
	return r.list(func(c *entity.Comment) bool { return c.PostID == postID })
}

func (r *memCommentRepo) ListPublic(postID *int64) ([]entity.Comment, error) {
	return r.list(func(c *entity.Comment) bool {
		if postID != nil && c.PostID != *postID {
			return false
		}
		p, err := r.posts.GetByID(c.PostID)
		return err == nil && p.Published
	})
}

func (r *memCommentRepo) list(keep func(*entity.Comment) bool) ([]entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Comment
	for _, c := range r.comments {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memCommentRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	delete(r.comments, id)
	return nil
}

var (
	_ repository.UserRepository    = (*memUserRepo)(nil)
	_ repository.PostRepository    = (*memPostRepo)(nil)
	_ repository.CommentRepository = (*memCommentRepo)(nil)
)
