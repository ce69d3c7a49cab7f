package comment_test

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/repository"
	"blog-platform/internal/service/auth"
	commentUC "blog-platform/internal/usecase/comment"
	"blog-platform/internal/usecase/crud"
)

/* ───────── スタブ実装 ───────── */

// stubArticles は Get と ListActiveIDs だけを実装する
type stubArticles struct {
	repository.ArticleRepository
	rows map[int64]*entity.Article
}

func (s *stubArticles) Get(_ context.Context, id int64) (*entity.Article, error) {
	a, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (s *stubArticles) ListActiveIDs(context.Context) ([]int64, error) {
	var ids []int64
	for id, a := range s.rows {
		if a.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type stubComments struct {
	mu     sync.Mutex
	rows   map[int64]*entity.Comment
	nextID int64
}

func (s *stubComments) sorted() []*entity.Comment {
	out := make([]*entity.Comment, 0, len(s.rows))
	for _, c := range s.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *stubComments) Count(context.Context, repository.ListQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows)), nil
}

func (s *stubComments) List(_ context.Context, q repository.ListQuery) ([]*entity.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.sorted()
	if q.Offset >= len(all) {
		return nil, nil
	}
	end := min(q.Offset+q.Limit, len(all))
	return all[q.Offset:end], nil
}

func (s *stubComments) Get(_ context.Context, id int64) (*entity.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *stubComments) Create(_ context.Context, c *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *stubComments) Update(_ context.Context, c *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.rows[c.ID] = &cp
	return nil
}

func (s *stubComments) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

var now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newService() (*commentUC.Service, *stubComments) {
	comments := &stubComments{rows: map[int64]*entity.Comment{}}
	return &commentUC.Service{
		Comments: comments,
		Articles: &stubArticles{rows: map[int64]*entity.Article{
			1: {ID: 1, Title: "An active article", Status: entity.StatusActive},
			2: {ID: 2, Title: "An archived article", Status: entity.StatusArchived},
		}},
		Window: pagination.DefaultConfig().Comments,
		Now:    func() time.Time { return now },
	}, comments
}

func loggedIn() context.Context {
	return auth.WithUser(context.Background(), &entity.User{ID: 7, Username: "ada", IsActive: true})
}

/* ───────── テスト ───────── */

func TestCreate_OnlyActiveArticles(t *testing.T) {
	tests := []struct {
		name      string
		articleID string
		wantCode  string
	}{
		{name: "active article", articleID: "1"},
		{name: "archived article", articleID: "2", wantCode: "invalid_choice"},
		{name: "unknown article", articleID: "99", wantCode: "invalid_choice"},
		{name: "missing article", articleID: "", wantCode: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, comments := newService()
			values := url.Values{"article_id": {tt.articleID}, "author": {"visitor"}, "text": {"Nice post"}}

			c, err := svc.Create(context.Background(), values)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, int64(1), c.ArticleID)
				assert.Equal(t, now, c.CreatedAt)
				assert.Len(t, comments.rows, 1)
				return
			}
			inv, ok := form.AsInvalid(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, []string{tt.wantCode}, inv.Errors.Codes("article_id"))
			assert.Empty(t, comments.rows)
		})
	}
}

func TestUpdate_RequiresLogin(t *testing.T) {
	svc, _ := newService()
	c, err := svc.Create(context.Background(), url.Values{"article_id": {"1"}, "author": {"visitor"}, "text": {"first"}})
	require.NoError(t, err)

	edit := url.Values{"article_id": {"1"}, "author": {"visitor"}, "text": {"edited"}}
	_, err = svc.Update(context.Background(), c.ID, edit)
	assert.ErrorIs(t, err, crud.ErrUnauthenticated)

	updated, err := svc.Update(loggedIn(), c.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)
}

func TestCreate_StoresRawText(t *testing.T) {
	svc, _ := newService()
	raw := `don't "quote" & <b>bold</b>`

	c, err := svc.Create(context.Background(), url.Values{"article_id": {"1"}, "author": {"visitor"}, "text": {raw}})
	require.NoError(t, err)
	assert.Equal(t, raw, c.Text)
}

func TestDelete_ConfirmationPreview(t *testing.T) {
	svc, comments := newService()
	c, err := svc.Create(context.Background(), url.Values{"article_id": {"1"}, "author": {"visitor"}, "text": {"bye"}})
	require.NoError(t, err)

	res, err := svc.Delete(loggedIn(), c.ID, false)
	require.NoError(t, err)
	assert.False(t, res.Deleted)
	assert.Len(t, comments.rows, 1)

	res, err = svc.Delete(loggedIn(), c.ID, true)
	require.NoError(t, err)
	assert.True(t, res.Deleted)
	assert.Empty(t, comments.rows)

	_, err = svc.Delete(loggedIn(), c.ID, true)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestList_OrphanWindow(t *testing.T) {
	svc, comments := newService()
	for i := range 6 {
		comments.rows[int64(i+1)] = &entity.Comment{ID: int64(i + 1), ArticleID: 1, Text: "c", CreatedAt: now.Add(time.Duration(i) * time.Minute)}
	}

	page, err := svc.List(context.Background(), pagination.Params{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 6)
	assert.Equal(t, int64(6), page.Items[0].ID)
	assert.Equal(t, 1, page.Metadata.TotalPages)
}

func TestCreateForArticle(t *testing.T) {
	t.Run("logged in user fills blank author", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService()
		c, err := svc.CreateForArticle(loggedIn(), 1, url.Values{"text": {"Great read"}})
		require.NoError(t, err)
		assert.Equal(t, "ada", c.Author)
		assert.Equal(t, int64(1), c.ArticleID)
	})

	t.Run("explicit author wins", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService()
		c, err := svc.CreateForArticle(loggedIn(), 1, url.Values{"author": {"guest"}, "text": {"hi"}})
		require.NoError(t, err)
		assert.Equal(t, "guest", c.Author)
	})

	t.Run("anonymous without author", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService()
		_, err := svc.CreateForArticle(context.Background(), 1, url.Values{"text": {"hi"}})
		inv, ok := form.AsInvalid(err)
		require.True(t, ok)
		assert.Equal(t, []string{"required"}, inv.Errors.Codes("author"))
	})

	t.Run("archived article", func(t *testing.T) {
		t.Parallel()
		svc, comments := newService()
		_, err := svc.CreateForArticle(loggedIn(), 2, url.Values{"text": {"hi"}})
		inv, ok := form.AsInvalid(err)
		require.True(t, ok)
		assert.Equal(t, []string{commentUC.CodeArticleArchived}, inv.Errors.Codes(form.NonField))
		assert.Empty(t, comments.rows)
	})

	t.Run("unknown article", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService()
		_, err := svc.CreateForArticle(loggedIn(), 99, url.Values{"text": {"hi"}})
		assert.True(t, errors.Is(err, entity.ErrNotFound))
	})
}
