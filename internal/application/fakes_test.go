package application

import (
	"sort"
	"sync"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
)

// In-memory repositories used by the service tests.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int64]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
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

func (r *fakeUserRepo) GetByID(id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (r *fakeUserRepo) GetByLogin(v string) (*entity.User, error) {
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

func (r *fakeUserRepo) Exists(username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || (email != "" && u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Update(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperr.New(apperr.NotFound, "user not found")
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) List() ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]*entity.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: map[int64]*entity.Post{}}
}

func (r *fakePostRepo) Create(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) GetByID(id int64) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "post not found")
}

func (r *fakePostRepo) ListPublished() ([]entity.Post, error) {
	return r.list(func(p *entity.Post) bool { return p.Published })
}

func (r *fakePostRepo) ListByAuthor(authorID int64) ([]entity.Post, error) {
	return r.list(func(p *entity.Post) bool { return p.AuthorID == authorID })
}

func (r *fakePostRepo) list(keep func(*entity.Post) bool) ([]entity.Post, error) {
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

func (r *fakePostRepo) Update(p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[p.ID]; !ok {
		return apperr.New(apperr.NotFound, "post not found")
	}
	cp := *p
	r.posts[p.ID] = &cp
	return nil
}

func (r *fakePostRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return apperr.New(apperr.NotFound, "post not found")
	}
	delete(r.posts, id)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]*entity.Comment
	posts    *fakePostRepo // for the published join in ListPublic
}

func newFakeCommentRepo(posts *fakePostRepo) *fakeCommentRepo {
	return &fakeCommentRepo{nextID: 1, comments: map[int64]*entity.Comment{}, posts: posts}
}

func (r *fakeCommentRepo) Create(c *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) GetByID(id int64) (*entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, apperr.New(apperr.NotFound, "comment not found")
}

func (r *fakeCommentRepo) ListByPost(postID int64) ([]entity.Comment, error) {
	return r.list(func(c *entity.Comment) bool { return c.PostID == postID })
}

func (r *fakeCommentRepo) ListPublic(postID *int64) ([]entity.Comment, error) {
	return r.list(func(c *entity.Comment) bool {
		if postID != nil && c.PostID != *postID {
			return false
		}
		p, err := r.posts.GetByID(c.PostID)
		return err == nil && p.Published
	})
}

func (r *fakeCommentRepo) list(keep func(*entity.Comment) bool) ([]entity.Comment, error) {
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

func (r *fakeCommentRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return apperr.New(apperr.NotFound, "comment not found")
	}
	delete(r.comments, id)
	return nil
}

var (
	_ repository.UserRepository    = (*fakeUserRepo)(nil)
	_ repository.PostRepository    = (*fakePostRepo)(nil)
	_ repository.CommentRepository = (*fakeCommentRepo)(nil)
)
