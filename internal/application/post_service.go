package application

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/policy"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/helpers"
)

const (
	publishedListKey = "posts:published"
	publishedListTTL = 30 * time.Second
)

// PostService combines the policy engine with the content store for post
// operations. Redis caches the public listing; Elasticsearch indexes
// published posts for search. Both are optional and nil-guarded.
type PostService struct {
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Policy   policy.Engine
	Redis    *redis.Client
	Logger   *logrus.Logger
	ES       *elasticsearch.Client
	ESIndex  string
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, pol policy.Engine, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *PostService {
	return &PostService{
		Posts:    posts,
		Comments: comments,
		Policy:   pol,
		Redis:    rdb,
		Logger:   logger,
		ES:       es,
		ESIndex:  esIndex,
	}
}

// List returns published posts for everyone; with mine=true it returns the
// caller's own posts in any state and requires authentication.
func (s *PostService) List(ctx context.Context, ident entity.Identity, mine bool) ([]entity.Post, error) {
	if mine {
		if ident.IsAnonymous() {
			return nil, apperr.New(apperr.AuthMissing, "authentication required")
		}
		posts, err := s.Posts.ListByAuthor(ident.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "listing posts", err)
		}
		return posts, nil
	}

	if s.Redis != nil {
		var cached []entity.Post
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, publishedListKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	posts, err := s.Posts.ListPublished()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing posts", err)
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, publishedListKey, posts, publishedListTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("cache published posts failed")
		}
	}
	return posts, nil
}

// Get loads a post with its comments. Drafts are visible only to the owner
// and admins; everyone else gets a deny after the existence check.
func (s *PostService) Get(ctx context.Context, ident entity.Identity, id int64) (*entity.Post, []entity.Comment, error) {
	p, err := s.Posts.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Policy.Decide(ident, policy.ReadPost, policy.Snapshot{OwnerID: p.AuthorID, Published: p.Published}); err != nil {
		return nil, nil, err
	}
	comments, err := s.Comments.ListByPost(p.ID)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.Internal, "listing comments", err)
	}
	return p, comments, nil
}

type CreatePostInput struct {
	Title     string
	Content   string
	Published bool
}

func (s *PostService) Create(ctx context.Context, ident entity.Identity, in CreatePostInput) (*entity.Post, error) {
	if err := s.Policy.Decide(ident, policy.CreatePost, policy.Snapshot{}); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.New(apperr.Validation, "title and content are required")
	}

	p := &entity.Post{
		Title:          in.Title,
		Content:        in.Content,
		Published:      in.Published,
		AuthorID:       ident.ID,
		AuthorUsername: ident.Username,
	}
	if err := s.Posts.Create(p); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "creating post", err)
	}

	s.invalidateListing(ctx)
	s.syncIndex(ctx, p)
	return p, nil
}

// UpdatePostInput carries partial-update semantics: nil fields keep their
// prior value.
type UpdatePostInput struct {
	Title     *string
	Content   *string
	Published *bool
}

func (s *PostService) Update(ctx context.Context, ident entity.Identity, id int64, in UpdatePostInput) (*entity.Post, error) {
	p, err := s.Posts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Decide(ident, policy.UpdatePost, policy.Snapshot{OwnerID: p.AuthorID, Published: p.Published}); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, apperr.New(apperr.Validation, "title cannot be empty")
		}
		p.Title = *in.Title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, apperr.New(apperr.Validation, "content cannot be empty")
		}
		p.Content = *in.Content
	}
	if in.Published != nil {
		p.Published = *in.Published
	}

	if err := s.Posts.Update(p); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Internal, "updating post", err)
	}

	s.invalidateListing(ctx)
	s.syncIndex(ctx, p)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, ident entity.Identity, id int64) error {
	p, err := s.Posts.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Policy.Decide(ident, policy.DeletePost, policy.Snapshot{OwnerID: p.AuthorID, Published: p.Published}); err != nil {
		return err
	}
	if err := s.Posts.Delete(id); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return err
		}
		return apperr.Wrap(apperr.Internal, "deleting post", err)
	}

	s.invalidateListing(ctx)
	s.deleteIndex(ctx, id)
	return nil
}

func (s *PostService) invalidateListing(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, publishedListKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("invalidate post listing cache failed")
	}
}

// syncIndex keeps the search index aligned with publication state:
// published posts are indexed, drafts are removed.
func (s *PostService) syncIndex(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	if !p.Published {
		s.deleteIndex(ctx, p.ID)
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"author_id":  p.AuthorID,
		"author":     p.AuthorUsername,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(p.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
}

func (s *PostService) deleteIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search performs a multi_match query over indexed published posts.
func (s *PostService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "content"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "decoding search response", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
