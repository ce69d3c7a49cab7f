package search

import (
	"fmt"
	"strings"
)

// Field names a searchable attribute. Fields refer to the article being
// searched or to rows related to it.
type Field string

const (
	FieldTitle         Field = "title"
	FieldText          Field = "text"
	FieldStatus        Field = "status"
	FieldTagName       Field = "tag_name"
	FieldCommentText   Field = "comment_text"
	FieldArticleAuthor Field = "article_author"
	FieldCommentAuthor Field = "comment_author"
	FieldArticleID     Field = "article_id"
)

// Op is a comparison operator.
type Op string

const (
	// OpContains is a case-insensitive substring match.
	OpContains Op = "contains"
	// OpIExact is a case-insensitive equality.
	OpIExact Op = "iexact"
	// OpExact is an exact equality.
	OpExact Op = "exact"
)

// Expr is a node of a predicate tree: Cond, And or Or.
type Expr interface {
	fmt.Stringer
	isExpr()
}

// Cond compares a field with a value.
type Cond struct {
	Field Field
	Op    Op
	Value any
}

// And matches when every child matches.
type And []Expr

// Or matches when at least one child matches.
type Or []Expr

func (Cond) isExpr() {}
func (And) isExpr()  {}
func (Or) isExpr()   {}

func (c Cond) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

func (a And) String() string { return join("AND", a) }
func (o Or) String() string  { return join("OR", o) }

func join(op string, exprs []Expr) string {
	if len(exprs) == 0 {
		if op == "AND" {
			return "TRUE"
		}
		return "FALSE"
	}
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, "("+e.String()+")")
	}
	return strings.Join(parts, " "+op+" ")
}

// AllOf joins the non-nil exprs with And. It returns nil when none remain,
// and the single expr when only one remains.
func AllOf(exprs ...Expr) Expr {
	out := make(And, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// Status matches articles in the given status.
func Status(status string) Expr {
	return Cond{Field: FieldStatus, Op: OpExact, Value: status}
}

// Simple is the quick search of the article listing: title contains value
// or a tag is named value, ignoring case. A blank value yields nil.
func Simple(value string) Expr {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return Or{
		Cond{Field: FieldTitle, Op: OpContains, Value: value},
		Cond{Field: FieldTagName, Op: OpIExact, Value: value},
	}
}
