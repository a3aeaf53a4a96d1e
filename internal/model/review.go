package model

import "time"

// Review is a scored write-up of a title.
//
// At most one review may exist per (title, author) pair. The service layer
// checks this before inserting and the database enforces it with a unique
// constraint, so the invariant holds even when two creations race.
//
// PubDate is set once at creation and never touched by updates.
type Review struct {
	ID       string    `json:"id"`
	TitleID  string    `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"` // author's username, read-only
	Text     string    `json:"text"`
	Score    int       `json:"score"` // 1..10 inclusive
	PubDate  time.Time `json:"pub_date"`
}

// Comment is a reply attached to a review. Deleting the review (or the
// review's title, or the comment's author) deletes the comment.
type Comment struct {
	ID       string    `json:"id"`
	ReviewID string    `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}
