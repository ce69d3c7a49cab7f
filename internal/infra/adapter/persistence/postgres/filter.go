package postgres

import (
	"errors"
	"fmt"
	"strings"

	"blog-platform/internal/pkg/search"
)

// ErrUnsupportedFilter is returned when a predicate names a field or operator
// the target table cannot evaluate.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// column describes how a search field maps onto SQL. A plain column is
// compared directly; a related column is compared inside an EXISTS subquery
// so that matching several related rows never duplicates the outer row.
type column struct {
	expr   string
	exists string // subquery prefix ending in "AND", empty for plain columns
}

// table is the field map of one searchable table.
type table map[search.Field]column

var articleTable = table{
	search.FieldArticleID: {expr: "a.id"},
	search.FieldTitle:     {expr: "a.title"},
	search.FieldText:      {expr: "a.text"},
	search.FieldStatus:    {expr: "a.status"},
	search.FieldTagName: {
		expr:   "t.name",
		exists: "SELECT 1 FROM article_tags at JOIN tags t ON t.id = at.tag_id WHERE at.article_id = a.id AND",
	},
	search.FieldCommentText: {
		expr:   "c.text",
		exists: "SELECT 1 FROM comments c WHERE c.article_id = a.id AND",
	},
	search.FieldCommentAuthor: {
		expr:   "c.author",
		exists: "SELECT 1 FROM comments c WHERE c.article_id = a.id AND",
	},
	search.FieldArticleAuthor: {
		expr:   "au.username",
		exists: "SELECT 1 FROM users au WHERE au.id = a.author_id AND",
	},
}

var commentTable = table{
	search.FieldArticleID:     {expr: "c.article_id"},
	search.FieldCommentText:   {expr: "c.text"},
	search.FieldCommentAuthor: {expr: "c.author"},
}

var categoryTable = table{}

// compiler turns a search.Expr into a parameterized WHERE condition.
// Placeholders are numbered from next.
type compiler struct {
	fields table
	args   []interface{}
	next   int
}

// whereClause compiles e against fields and returns "WHERE ..." with its
// arguments. A nil e yields an empty clause.
func whereClause(fields table, e search.Expr) (clause string, args []interface{}, err error) {
	if e == nil {
		return "", nil, nil
	}
	c := &compiler{fields: fields, next: 1}
	cond, err := c.compile(e)
	if err != nil {
		return "", nil, err
	}
	return "WHERE " + cond, c.args, nil
}

func (c *compiler) compile(e search.Expr) (string, error) {
	switch v := e.(type) {
	case search.Cond:
		return c.cond(v)
	case search.And:
		return c.group(v, "AND", "TRUE")
	case search.Or:
		// 空のORは常に偽: 条件なしで全件ヒットさせない
		return c.group(v, "OR", "FALSE")
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedFilter, e)
	}
}

func (c *compiler) group(children []search.Expr, op, empty string) (string, error) {
	if len(children) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(children))
	for _, child := range children {
		part, err := c.compile(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}

func (c *compiler) cond(cond search.Cond) (string, error) {
	col, ok := c.fields[cond.Field]
	if !ok {
		return "", fmt.Errorf("%w: field %q", ErrUnsupportedFilter, cond.Field)
	}

	var cmp string
	switch cond.Op {
	case search.OpContains:
		s, ok := cond.Value.(string)
		if !ok {
			return "", fmt.Errorf("%w: contains needs a string, got %T", ErrUnsupportedFilter, cond.Value)
		}
		cmp = fmt.Sprintf("%s ILIKE %s", col.expr, c.bind(search.EscapeILIKE(s)))
	case search.OpIExact:
		cmp = fmt.Sprintf("LOWER(%s) = LOWER(%s)", col.expr, c.bind(cond.Value))
	case search.OpExact:
		cmp = fmt.Sprintf("%s = %s", col.expr, c.bind(cond.Value))
	default:
		return "", fmt.Errorf("%w: operator %q", ErrUnsupportedFilter, cond.Op)
	}

	if col.exists == "" {
		return cmp, nil
	}
	return fmt.Sprintf("EXISTS (%s %s)", col.exists, cmp), nil
}

func (c *compiler) bind(v interface{}) string {
	c.args = append(c.args, v)
	p := fmt.Sprintf("$%d", c.next)
	c.next++
	return p
}

// orderBy resolves an ordering like "-created_at" against a whitelist of
// sortable columns. id is appended as a tie breaker for stable pages.
func orderBy(allowed map[string]string, ordering, idColumn string) (string, error) {
	if ordering == "" {
		return "ORDER BY " + idColumn + " DESC", nil
	}
	dir := "ASC"
	name := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		name = ordering[1:]
	}
	col, ok := allowed[name]
	if !ok {
		return "", fmt.Errorf("%w: ordering %q", ErrUnsupportedFilter, ordering)
	}
	if col == idColumn {
		return fmt.Sprintf("ORDER BY %s %s", col, dir), nil
	}
	return fmt.Sprintf("ORDER BY %s %s, %s %s", col, dir, idColumn, dir), nil
}
