package article_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
)

/* ───────── スタブ実装 ───────── */

// eval は search.Expr を記事に対して評価する (スタブ専用)
func eval(e search.Expr, a *entity.Article, users map[int64]string) bool {
	switch v := e.(type) {
	case nil:
		return true
	case search.And:
		for _, c := range v {
			if !eval(c, a, users) {
				return false
			}
		}
		return true
	case search.Or:
		for _, c := range v {
			if eval(c, a, users) {
				return true
			}
		}
		return false
	case search.Cond:
		s := fmt.Sprint(v.Value)
		switch v.Field {
		case search.FieldStatus:
			return string(a.Status) == s
		case search.FieldTitle:
			return strings.Contains(strings.ToLower(a.Title), strings.ToLower(s))
		case search.FieldText:
			return strings.Contains(strings.ToLower(a.Text), strings.ToLower(s))
		case search.FieldTagName:
			for _, t := range a.Tags {
				if strings.EqualFold(t.Name, s) {
					return true
				}
			}
			return false
		case search.FieldArticleAuthor:
			return users[a.AuthorID] == s
		}
	}
	return false
}

// インメモリ ArticleRepository + TagRepository + CategoryRepository + CommentRepository
type store struct {
	mu         sync.Mutex
	articles   map[int64]*entity.Article
	tags       map[string]*entity.Tag
	categories map[int64]*entity.Category
	comments   map[int64]*entity.Comment
	users      map[int64]string
	nextID     int64

	tagConflicts int   // GetOrCreate が ErrConflict を返す残り回数
	err          error // 強制的にエラーを返したいとき用
}

func newStore() *store {
	return &store{
		articles:   map[int64]*entity.Article{},
		tags:       map[string]*entity.Tag{},
		categories: map[int64]*entity.Category{1: {ID: 1, Name: "news"}},
		comments:   map[int64]*entity.Comment{},
		users:      map[int64]string{7: "ada", 8: "grace"},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func clone(a *entity.Article) *entity.Article {
	cp := *a
	cp.Tags = append([]entity.Tag{}, a.Tags...)
	return &cp
}

// seed は記事を直接登録する
func (s *store) seed(title string, authorID int64, status entity.ArticleStatus, created time.Time, tags ...string) *entity.Article {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &entity.Article{
		ID:         s.id(), Title: title, Text: "body of " + title, AuthorID: authorID,
		AuthorName: s.users[authorID], Status: status, CreatedAt: created, UpdatedAt: created,
	}
	for _, n := range tags {
		a.Tags = append(a.Tags, *s.tagLocked(n))
	}
	s.articles[a.ID] = a
	return clone(a)
}

func (s *store) tagLocked(name string) *entity.Tag {
	if t, ok := s.tags[name]; ok {
		return t
	}
	t := &entity.Tag{ID: s.id(), Name: name}
	s.tags[name] = t
	return t
}

func (s *store) matching(q repository.ListQuery) []*entity.Article {
	var out []*entity.Article
	for _, a := range s.articles {
		if eval(q.Filter, a, s.users) {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// --- ArticleRepository ---

func (s *store) Count(_ context.Context, q repository.ListQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.matching(q))), s.err
}

func (s *store) List(_ context.Context, q repository.ListQuery) ([]*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return window(s.matching(q), q.Offset, q.Limit), nil
}

func (s *store) Get(_ context.Context, id int64) (*entity.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, s.err
	}
	return clone(a), s.err
}

func (s *store) Create(_ context.Context, a *entity.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	a.ID = s.id()
	s.articles[a.ID] = clone(a)
	return nil
}

func (s *store) Update(_ context.Context, a *entity.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.articles[a.ID]
	if !ok {
		return entity.ErrNotFound
	}
	cur.Title, cur.Text, cur.CategoryID, cur.Status, cur.UpdatedAt = a.Title, a.Text, a.CategoryID, a.Status, a.UpdatedAt
	return nil
}

func (s *store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, id)
	return nil
}

func (s *store) Archive(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.Status = entity.StatusArchived
	a.UpdatedAt = at
	return nil
}

func (s *store) ReplaceTags(_ context.Context, articleID int64, tagIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.articles[articleID]
	a.Tags = a.Tags[:0]
	for _, id := range tagIDs {
		for _, t := range s.tags {
			if t.ID == id {
				a.Tags = append(a.Tags, *t)
			}
		}
	}
	return nil
}

func (s *store) ListActiveIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for id, a := range s.articles {
		if a.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *store) CountByAuthor(_ context.Context, authorID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.articles {
		if a.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// --- TagRepository ---

type tagRepo struct{ *store }

func (r tagRepo) GetOrCreate(_ context.Context, name string) (*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tagConflicts > 0 {
		r.tagConflicts--
		return nil, fmt.Errorf("tags_name_key: %w", entity.ErrConflict)
	}
	t := *r.tagLocked(name)
	return &t, nil
}

// --- CategoryRepository ---

type categoryRepo struct{ *store }

func (r categoryRepo) Count(context.Context, repository.ListQuery) (int64, error) { return 0, nil }
func (r categoryRepo) List(context.Context, repository.ListQuery) ([]*entity.Category, error) {
	return nil, nil
}
func (r categoryRepo) Get(_ context.Context, id int64) (*entity.Category, error) {
	return r.categories[id], nil
}
func (r categoryRepo) Create(context.Context, *entity.Category) error { return nil }
func (r categoryRepo) Update(context.Context, *entity.Category) error { return nil }
func (r categoryRepo) Delete(context.Context, int64) error { return nil }
func (r categoryRepo) ListIDs(context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.categories))
	for id := range r.categories {
		ids = append(ids, id)
	}
	return ids, nil
}

// --- CommentRepository ---

type commentRepo struct{ *store }

func (r commentRepo) seed(articleID int64, author string, created time.Time) *entity.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &entity.Comment{ID: r.id(), ArticleID: articleID, Author: author, Text: "hi", CreatedAt: created, UpdatedAt: created}
	r.comments[c.ID] = c
	return c
}

func (r commentRepo) matching(q repository.ListQuery) []*entity.Comment {
	var out []*entity.Comment
	for _, c := range r.comments {
		if cond, ok := q.Filter.(search.Cond); ok && cond.Field == search.FieldArticleID && cond.Value != c.ArticleID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r commentRepo) Count(_ context.Context, q repository.ListQuery) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(q))), nil
}

func (r commentRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(r.matching(q), q.Offset, q.Limit), nil
}

func (r commentRepo) Get(_ context.Context, id int64) (*entity.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comments[id], nil
}
func (r commentRepo) Create(context.Context, *entity.Comment) error { return nil }
func (r commentRepo) Update(context.Context, *entity.Comment) error { return nil }
func (r commentRepo) Delete(context.Context, int64) error { return nil }

// passTx は WithinTx を直接実行するだけのスタブ
type passTx struct{ calls int }

func (p *passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}
