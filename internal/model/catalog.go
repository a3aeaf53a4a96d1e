package model

// Category groups titles by kind (film, book, music, ...).
// Categories are identified by slug in the API; the numeric-looking xid is
// internal. There is no update operation — a category is created, listed,
// retrieved, or deleted.
type Category struct {
	ID   string `json:"-"    db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Genre tags titles (drama, rock, ...). Same lifecycle as Category.
type Genre struct {
	ID   string `json:"-"    db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Title is a reviewable work.
//
// Rating is never stored: it is the arithmetic mean of the scores of the
// title's reviews, computed by the repository at read time. A title with no
// reviews has a nil Rating, which serializes to JSON null — never zero.
//
// Category is a weak reference: deleting the category nulls it out on the
// title rather than cascading.
type Title struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        *int      `json:"year"`
	Description string    `json:"description"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`
	Rating      *float64  `json:"rating"`
}
