package entity

// Category groups articles. An article references at most one category.
type Category struct {
	ID   int64
	Name string
}
