package article

import (
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"blog-platform/internal/common/pagination"
	"blog-platform/internal/domain/entity"
	"blog-platform/internal/form"
	"blog-platform/internal/observability/metrics"
	"blog-platform/internal/pkg/search"
	"blog-platform/internal/repository"
	"blog-platform/internal/resilience/retry"
	"blog-platform/internal/service/auth"
	"blog-platform/internal/usecase/crud"
)

// SearchParam is the query parameter of the quick search on the index.
const SearchParam = "search"

// Service provides article management use cases.
type Service struct {
	Articles   repository.ArticleRepository
	Tags       repository.TagRepository
	Categories repository.CategoryRepository
	Comments   repository.CommentRepository
	Tx         repository.TxManager
	Windows    pagination.Config
	Now        func() time.Time
}

// IndexResult is the article index: one page of active articles and every
// archived article.
type IndexResult struct {
	Search   string
	Active   pagination.Page[*entity.Article]
	Archived []*entity.Article
}

// DetailResult is an article with one page of its comments, newest first.
type DetailResult struct {
	Article  *entity.Article
	Comments pagination.Page[*entity.Comment]
}

// SearchResult is one page of the full search.
type SearchResult struct {
	Criteria search.Criteria
	Page     pagination.Page[*entity.Article]
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Resource returns the generic CRUD configuration of articles.
func (s *Service) Resource() *crud.Resource[entity.Article, *form.Article] {
	return &crud.Resource[entity.Article, *form.Article]{
		Name:            "article",
		Store:           s.Articles,
		NewForm:         s.newForm,
		Ordering:        "-created_at",
		Window:          s.Windows.Index,
		ConfirmDeletion: true,
		Authorize: crud.OwnerRequired(func(a *entity.Article) int64 { return a.AuthorID },
			crud.OpCreate, crud.OpUpdate, crud.OpDelete),
		BeforeSave: s.beforeSave,
		AfterSave:  s.attachTags,
		Remove:     s.archive,
		Tx:         s.Tx,
	}
}

/* ─── 1. Index ─── */

// Index lists active articles narrowed by the quick search in query, and
// all archived articles. A search value over search.MaxQueryLength is
// ignored and the listing is unfiltered.
func (s *Service) Index(ctx context.Context, params pagination.Params) (*IndexResult, error) {
	q := params.Query.Get(SearchParam)
	if utf8.RuneCountInString(q) > search.MaxQueryLength {
		q = ""
	}

	res := &IndexResult{Search: q}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		filter := search.AllOf(search.Status(string(entity.StatusActive)), search.Simple(q))
		page, err := crud.Paginate(crud.WithListing(gctx, "index"), s.Articles, s.Windows.Index, params, filter, "-created_at")
		if err != nil {
			return fmt.Errorf("list active articles: %w", err)
		}
		res.Active = page
		return nil
	})
	g.Go(func() error {
		archived, err := s.listArchived(gctx)
		if err != nil {
			return fmt.Errorf("list archived articles: %w", err)
		}
		res.Archived = archived
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) listArchived(ctx context.Context) ([]*entity.Article, error) {
	filter := search.Status(string(entity.StatusArchived))
	total, err := s.Articles.Count(ctx, repository.ListQuery{Filter: filter})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []*entity.Article{}, nil
	}
	return s.Articles.List(ctx, repository.ListQuery{Filter: filter, Ordering: "-created_at", Limit: int(total)})
}

/* ─── 2. Search ─── */

// Search runs the full search described by values. Invalid criteria are
// reported as *form.Invalid before any query runs.
func (s *Service) Search(ctx context.Context, values url.Values) (*SearchResult, error) {
	params, err := pagination.ParseValues(values)
	if err != nil {
		return nil, form.Single(values, pagination.PageParam, "invalid", err.Error())
	}
	criteria := search.ParseCriteria(values)
	if err := criteria.Validate(params.Query); err != nil {
		return nil, err
	}

	page, err := crud.Paginate(crud.WithListing(ctx, "search"), s.Articles, s.Windows.Search, params, criteria.Expr(), "-created_at")
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	metrics.RecordSearch(page.Metadata.Total)
	return &SearchResult{Criteria: criteria, Page: page}, nil
}

/* ─── 3. Detail ─── */

// Detail loads the article and the requested page of its comments concurrently.
func (s *Service) Detail(ctx context.Context, id int64, params pagination.Params) (*DetailResult, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	res := &DetailResult{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.Articles.Get(gctx, id)
		if err != nil {
			return fmt.Errorf("get article: %w", err)
		}
		if a == nil {
			return ErrArticleNotFound
		}
		res.Article = a
		return nil
	})
	g.Go(func() error {
		filter := search.Cond{Field: search.FieldArticleID, Op: search.OpExact, Value: id}
		page, err := crud.Paginate(crud.WithListing(gctx, "article_comments"), s.Comments, s.Windows.ArticleComments, params, filter, "-created_at")
		if err != nil {
			return fmt.Errorf("list article comments: %w", err)
		}
		res.Comments = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

/* ─── 4. Create / Update / Delete ─── */

// Create stores a new article authored by the acting user.
func (s *Service) Create(ctx context.Context, values url.Values) (*entity.Article, error) {
	a, err := s.Resource().Create(ctx, values)
	if err != nil {
		return nil, err
	}
	metrics.RecordArticleCreated()
	return s.reload(ctx, a.ID)
}

// Update overwrites the article and replaces its tags. Only the author may update.
func (s *Service) Update(ctx context.Context, id int64, values url.Values) (*entity.Article, error) {
	a, err := s.Resource().Update(ctx, id, values)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, a.ID)
}

// Delete archives the article once confirmed. Only the author may delete.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) (crud.DeleteResult[entity.Article], error) {
	res, err := s.Resource().Delete(ctx, id, confirmed)
	if err != nil {
		return res, err
	}
	if res.Deleted {
		metrics.RecordArticleArchived()
	}
	return res, nil
}

func (s *Service) reload(ctx context.Context, id int64) (*entity.Article, error) {
	a, err := s.Articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload article: %w", err)
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

func (s *Service) newForm(ctx context.Context, values url.Values) (*form.Article, error) {
	ids, err := s.Categories.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return form.NewArticle(values, form.NewChoiceSet(ids)), nil
}

func (s *Service) beforeSave(ctx context.Context, _ *form.Article, a *entity.Article, creating bool) error {
	now := s.now()
	if creating {
		user, _ := auth.UserFromContext(ctx)
		a.AuthorID = user.ID
		a.AuthorName = user.Username
		a.Status = entity.StatusActive
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return nil
}

// attachTags resolves every tag name and replaces the tag set of a.
func (s *Service) attachTags(ctx context.Context, f *form.Article, a *entity.Article, _ bool) error {
	names := f.TagNames()
	tags := make([]entity.Tag, 0, len(names))
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		var tag *entity.Tag
		err := retry.WithBackoff(ctx, retry.ConflictConfig(), func() error {
			var err error
			tag, err = s.Tags.GetOrCreate(ctx, name)
			return err
		})
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}
		tags = append(tags, *tag)
		ids = append(ids, tag.ID)
	}
	if err := s.Articles.ReplaceTags(ctx, a.ID, ids); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	a.Tags = tags
	return nil
}

func (s *Service) archive(ctx context.Context, a *entity.Article) error {
	now := s.now()
	if !a.Archive(now) {
		return nil
	}
	return s.Articles.Archive(ctx, a.ID, now)
}
