// Package view turns reviews and comments into display-ready view models.
// Nothing here knows about markup; see package render for that.
package view

import (
	"strconv"
	"strings"

	"reviewhub/internal/catalog"
	"reviewhub/internal/format"
	"reviewhub/pkg/models"
)

const (
	DetailPath      = "review.html"
	NotFoundMessage = "Review not found."
	RelatedHeading  = "Related Reviews"
	MaxRelated      = 3
)

// Href links to the detail page of one review.
func Href(id int) string {
	return DetailPath + "?id=" + strconv.Itoa(id)
}

type Card struct {
	ID       int    `json:"id"`
	Href     string `json:"href"`
	Image    string `json:"image"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Snippet  string `json:"snippet,omitempty"`
	Stars    string `json:"stars"`
	Fraction string `json:"fraction"`
}

func NewCard(r models.Review) Card {
	return Card{
		ID:       r.ID,
		Href:     Href(r.ID),
		Image:    r.Image,
		Title:    r.Title,
		Category: r.Category,
		Snippet:  r.Snippet,
		Stars:    format.Stars(int(r.Rating)),
		Fraction: format.Fraction(int(r.Rating)),
	}
}

type Grid struct {
	Cards []Card `json:"cards"`
	Empty bool   `json:"empty"`
}

func NewGrid(list []models.Review) Grid {
	cards := make([]Card, 0, len(list))
	for _, r := range list {
		cards = append(cards, NewCard(r))
	}
	return Grid{Cards: cards, Empty: len(cards) == 0}
}

type Hero struct {
	Card
}

// Featured picks the highest-rated review; the first one wins a tie.
// It returns nil for an empty collection.
func Featured(all []models.Review) *Hero {
	if len(all) == 0 {
		return nil
	}
	best := 0
	for i, r := range all[1:] {
		if r.Rating > all[best].Rating {
			best = i + 1
		}
	}
	return &Hero{Card: NewCard(all[best])}
}

// NewRelated lists up to MaxRelated other reviews of the same category,
// in store order. Related cards carry no snippet.
func NewRelated(all []models.Review, category string, excludeID int) []Card {
	out := make([]Card, 0, MaxRelated)
	for _, r := range all {
		if len(out) == MaxRelated {
			break
		}
		if r.Category != category || r.ID == excludeID {
			continue
		}
		c := NewCard(r)
		c.Snippet = ""
		out = append(out, c)
	}
	return out
}

type Article struct {
	ID       int      `json:"id"`
	Image    string   `json:"image"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Stars    string   `json:"stars"`
	Fraction string   `json:"fraction"`
	Lines    []string `json:"lines"`
	Pros     []string `json:"pros"`
	Cons     []string `json:"cons"`
}

// Detail is the detail page view. When NotFound is set every other field
// is empty and no comment panel or related section is built.
type Detail struct {
	NotFound bool          `json:"not_found"`
	Message  string        `json:"message,omitempty"`
	Article  *Article      `json:"article,omitempty"`
	Related  []Card        `json:"related,omitempty"`
	Comments *CommentPanel `json:"comments,omitempty"`
}

func NotFound() Detail {
	return Detail{NotFound: true, Message: NotFoundMessage}
}

// ParseID reads the id query parameter. Anything that is not an integer is
// a lookup miss.
func ParseID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return id, true
}

// NewDetail builds the article and its related reviews. The comment panel
// is attached by the caller, and only when the review exists.
func NewDetail(snap *catalog.Snapshot, rawID string) Detail {
	id, ok := ParseID(rawID)
	if !ok {
		return NotFound()
	}
	r, ok := snap.FindByID(id)
	if !ok {
		return NotFound()
	}
	return Detail{
		Article: NewArticle(r),
		Related: NewRelated(snap.All(), r.Category, r.ID),
	}
}

func NewArticle(r models.Review) *Article {
	return &Article{
		ID:       r.ID,
		Image:    r.Image,
		Title:    r.Title,
		Category: r.Category,
		Stars:    format.Stars(int(r.Rating)),
		Fraction: format.Fraction(int(r.Rating)),
		Lines:    lines(r.Content),
		Pros:     nonNil(r.Pros),
		Cons:     nonNil(r.Cons),
	}
}

func lines(content string) []string {
	if content == "" {
		return []string{}
	}
	return strings.Split(content, "\n")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type CommentRow struct {
	CID  string `json:"cid"`
	Text string `json:"text"`
	Up   int    `json:"up"`
	Down int    `json:"down"`
}

type CommentPanel struct {
	ReviewID int          `json:"review_id"`
	Count    string       `json:"count"`
	Rows     []CommentRow `json:"rows"`
	Draft    string       `json:"draft"`
}

// NewCommentPanel rebuilds every row from the current list.
func NewCommentPanel(reviewID int, comments []models.Comment, draft string) CommentPanel {
	rows := make([]CommentRow, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, CommentRow{CID: c.CID, Text: c.Text, Up: c.Up, Down: c.Down})
	}
	return CommentPanel{
		ReviewID: reviewID,
		Count:    "(" + strconv.Itoa(len(comments)) + ")",
		Rows:     rows,
		Draft:    draft,
	}
}
