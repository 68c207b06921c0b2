package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewhub/internal/catalog"
	"reviewhub/pkg/models"
)

func reviews() []models.Review {
	return []models.Review{
		{ID: 1, Title: "Phone", Category: "Tech", Rating: 4, Image: "p.jpg", Snippet: "fast"},
		{ID: 2, Title: "Tablet", Category: "Tech", Rating: 5},
		{ID: 3, Title: "Kettle", Category: "Home", Rating: 5},
		{ID: 4, Title: "Laptop", Category: "Tech", Rating: 9},
		{ID: 5, Title: "Watch", Category: "Tech", Rating: 2},
		{ID: 6, Title: "Mouse", Category: "Tech", Rating: 1},
	}
}

func TestNewCard(t *testing.T) {
	c := NewCard(reviews()[0])
	assert.Equal(t, Card{
		ID:       1,
		Href:     "review.html?id=1",
		Image:    "p.jpg",
		Title:    "Phone",
		Category: "Tech",
		Snippet:  "fast",
		Stars:    "⭐⭐⭐⭐",
		Fraction: "(4/5)",
	}, c)

	// out-of-range stored ratings are clamped only for stars
	c = NewCard(reviews()[3])
	assert.Equal(t, "⭐⭐⭐⭐⭐", c.Stars)
	assert.Equal(t, "(9/5)", c.Fraction)
}

func TestNewGrid(t *testing.T) {
	g := NewGrid(reviews()[:2])
	assert.False(t, g.Empty)
	require.Len(t, g.Cards, 2)
	assert.Equal(t, 1, g.Cards[0].ID)
	assert.Equal(t, 2, g.Cards[1].ID)

	g = NewGrid(nil)
	assert.True(t, g.Empty)
	assert.NotNil(t, g.Cards)
	assert.Empty(t, g.Cards)
}

func TestFeatured(t *testing.T) {
	assert.Nil(t, Featured(nil))

	h := Featured(reviews())
	require.NotNil(t, h)
	assert.Equal(t, 4, h.ID, "raw rating 9 is highest")

	tie := []models.Review{
		{ID: 10, Rating: 3},
		{ID: 11, Rating: 5},
		{ID: 12, Rating: 5},
	}
	assert.Equal(t, 11, Featured(tie).ID, "first encountered wins a tie")

	assert.Equal(t, 7, Featured([]models.Review{{ID: 7}}).ID)
}

func TestNewRelated(t *testing.T) {
	got := NewRelated(reviews(), "Tech", 2)
	require.Len(t, got, MaxRelated)
	assert.Equal(t, []int{1, 4, 5}, []int{got[0].ID, got[1].ID, got[2].ID})
	for _, c := range got {
		assert.Empty(t, c.Snippet)
		assert.Equal(t, "Tech", c.Category)
	}

	assert.Empty(t, NewRelated(reviews(), "Home", 3), "only the excluded review shares the category")
	assert.Empty(t, NewRelated(nil, "Tech", 1))
}

func TestNewArticle(t *testing.T) {
	a := NewArticle(models.Review{
		ID:      9,
		Title:   "Blender",
		Rating:  3,
		Content: "First.\nSecond.\n\nFourth.",
		Pros:    []string{"quiet"},
	})
	assert.Equal(t, []string{"First.", "Second.", "", "Fourth."}, a.Lines)
	assert.Equal(t, []string{"quiet"}, a.Pros)
	assert.NotNil(t, a.Cons)
	assert.Empty(t, a.Cons)
	assert.Equal(t, "⭐⭐⭐", a.Stars)

	empty := NewArticle(models.Review{ID: 1})
	assert.Empty(t, empty.Lines)
}

func TestNotFound(t *testing.T) {
	d := NotFound()
	assert.True(t, d.NotFound)
	assert.Equal(t, "Review not found.", d.Message)
	assert.Nil(t, d.Article)
	assert.Nil(t, d.Comments)
	assert.Nil(t, d.Related)
}

func TestNewCommentPanel(t *testing.T) {
	p := NewCommentPanel(5, []models.Comment{{CID: "a1", Text: "hi", Up: 2}}, "")
	assert.Equal(t, "(1)", p.Count)
	assert.Equal(t, []CommentRow{{CID: "a1", Text: "hi", Up: 2}}, p.Rows)

	p = NewCommentPanel(5, nil, "draft")
	assert.Equal(t, "(0)", p.Count)
	assert.NotNil(t, p.Rows)
	assert.Equal(t, "draft", p.Draft)
}

func TestParseID(t *testing.T) {
	id, ok := ParseID(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"", "abc", "4.5", "1e3"} {
		_, ok := ParseID(raw)
		assert.False(t, ok, raw)
	}
}

func TestNewDetail(t *testing.T) {
	snap := catalog.NewSnapshot(reviews())

	d := NewDetail(snap, "2")
	assert.False(t, d.NotFound)
	require.NotNil(t, d.Article)
	assert.Equal(t, "Tablet", d.Article.Title)
	assert.Len(t, d.Related, MaxRelated)
	assert.Nil(t, d.Comments)

	// misses carry nothing but the message
	assert.Equal(t, NotFound(), NewDetail(snap, "99"))
	assert.Equal(t, NotFound(), NewDetail(snap, "two"))
	assert.Equal(t, NotFound(), NewDetail(catalog.Empty(), "1"))
}
