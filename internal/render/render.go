package render

import (
	"net/url"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"reviewhub/internal/filter"
	"reviewhub/internal/theme"
	"reviewhub/internal/view"
)

// Element ids the page shells carry.
const (
	IDGrid         = "reviews-container"
	IDHero         = "hero"
	IDSearch       = "searchBar"
	IDSearchCat    = "searchCategory"
	IDChips        = "categoryChips"
	IDEmptyState   = "emptyState"
	IDDetail       = "review-detail"
	IDCommentList  = "commentList"
	IDCommentCount = "commentCount"
	IDCommentInput = "commentInput"
	IDCommentPost  = "commentPost"
	IDCommentForm  = "commentForm"
	IDRelated      = "related"
	IDThemeToggle  = "themeToggle"

	HeroFallback = "No reviews yet."
)

func CommentsAction(reviewID int) string {
	return view.DetailPath + "/comments?id=" + strconv.Itoa(reviewID)
}

func VotesAction(reviewID int) string {
	return view.DetailPath + "/votes?id=" + strconv.Itoa(reviewID)
}

// Grid replaces the grid contents and shows the empty-state placeholder
// only when there is nothing to list.
func Grid(d *Document, g view.Grid) {
	grid := d.ByID(IDGrid)
	if grid == nil {
		return
	}
	Clear(grid)

	if empty := d.ByID(IDEmptyState); empty != nil {
		if g.Empty {
			RemoveClass(empty, "hidden")
		} else {
			AddClass(empty, "hidden")
		}
	}
	for _, c := range g.Cards {
		grid.AppendChild(Card(c))
	}
}

func Card(c view.Card) *html.Node {
	return Append(El(atom.Article, "class", "card"),
		Append(El(atom.A, "href", c.Href, "aria-label", c.Title),
			Append(El(atom.Div, "class", "thumb"), El(atom.Img, "src", c.Image, "alt", c.Title)),
			Append(El(atom.Div, "class", "c-body"),
				Append(El(atom.Span, "class", "tag"), Text(c.Category)),
				Append(El(atom.H3, "class", "c-title"), Text(c.Title)),
				Append(El(atom.P, "class", "c-snippet"), Text(c.Snippet)),
				starline(c.Stars, c.Fraction),
			),
		),
	)
}

func starline(stars, fraction string) *html.Node {
	n := Append(El(atom.Div, "class", "starline"), Text(stars))
	if fraction != "" {
		Append(n, Text(" "), Append(El(atom.Span, "class", "muted"), Text(fraction)))
	}
	return n
}

// Hero mounts the featured review, or an explicit fallback when there is
// none.
func Hero(d *Document, h *view.Hero) {
	host := d.ByID(IDHero)
	if host == nil {
		return
	}
	Clear(host)

	if h == nil {
		host.AppendChild(Append(El(atom.Div, "class", "hero-empty"),
			Append(El(atom.P, "class", "muted"), Text(HeroFallback)),
		))
		return
	}

	host.AppendChild(Append(El(atom.A, "class", "hero-card", "href", h.Href),
		Append(El(atom.Div, "class", "hero-media"), El(atom.Img, "src", h.Image, "alt", h.Title)),
		Append(El(atom.Div, "class", "hero-overlay"),
			Append(El(atom.Div, "class", "hero-meta"),
				Append(El(atom.Div, "class", "hero-kicker"),
					Append(El(atom.Span, "class", "k-badge"), Text(h.Category)),
					Append(El(atom.Span, "class", "k-stars"), Text(h.Stars)),
				),
				Append(El(atom.H2, "class", "hero-title"), Text(h.Title)),
				Append(El(atom.P, "class", "muted"), Text(h.Snippet)),
			),
		),
	))
}

// Chips rebuilds the chip bar: "All" first, then one chip per category in
// the order given.
func Chips(d *Document, categories []string) {
	nav := d.ByID(IDChips)
	if nav == nil {
		return
	}
	Clear(nav)
	for _, cat := range append([]string{filter.All}, categories...) {
		Append(nav, Text("\n"), Append(El(atom.A, "class", "chip", "data-cat", cat, "href", homeHref(cat, "")), Text(cat)))
	}
}

// Filters marks the active category chip, points every chip at its
// filtered homepage and restores the search box.
func Filters(d *Document, category, query string) {
	d.Each(func(n *html.Node) bool { return HasClass(n, "chip") && hasAttr(n, "data-cat") }, func(n *html.Node) {
		cat := Attr(n, "data-cat")
		if cat == category {
			AddClass(n, "active")
		} else {
			RemoveClass(n, "active")
		}
		if n.DataAtom == atom.A {
			SetAttr(n, "href", homeHref(cat, query))
		}
	})
	if sb := d.ByID(IDSearch); sb != nil {
		SetAttr(sb, "value", query)
	}
	if hidden := d.ByID(IDSearchCat); hidden != nil {
		SetAttr(hidden, "value", category)
	}
}

func homeHref(category, query string) string {
	v := url.Values{}
	if category != "" && category != filter.All {
		v.Set("category", category)
	}
	if query != "" {
		v.Set("q", query)
	}
	if len(v) == 0 {
		return "index.html"
	}
	return "index.html?" + v.Encode()
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// Detail mounts the article, or only the not-found message.
func Detail(d *Document, v view.Detail) {
	host := d.ByID(IDDetail)
	if host == nil {
		return
	}
	Clear(host)

	if v.NotFound || v.Article == nil {
		host.AppendChild(Append(El(atom.P), Text(view.NotFoundMessage)))
		return
	}
	a := v.Article

	body := El(atom.P)
	for i, line := range a.Lines {
		if i > 0 {
			body.AppendChild(El(atom.Br))
		}
		body.AppendChild(Text(line))
	}

	Append(host,
		Append(El(atom.Div, "class", "article-hero"),
			Append(El(atom.Div, "class", "media"), El(atom.Img, "src", a.Image, "alt", a.Title)),
		),
		Append(El(atom.Div, "class", "article-head"),
			Append(El(atom.Div, "class", "meta-row"),
				Append(El(atom.Span, "class", "tag"), Text(a.Category)),
				Append(El(atom.Span, "class", "article-stars"),
					Text(a.Stars+" "),
					Append(El(atom.Span, "class", "muted"), Text(a.Fraction)),
				),
			),
			Append(El(atom.H1, "class", "article-title"), Text(a.Title)),
		),
		Append(El(atom.Div, "class", "article-content"),
			body,
			Append(El(atom.Div, "class", "proscons"),
				box("pros", "✅ Pros", a.Pros),
				box("cons", "❌ Cons", a.Cons),
			),
		),
	)
}

func box(class, heading string, items []string) *html.Node {
	ul := El(atom.Ul)
	for _, it := range items {
		ul.AppendChild(Append(El(atom.Li), Text(it)))
	}
	return Append(El(atom.Div, "class", "box "+class),
		Append(El(atom.H3), Text(heading)),
		ul,
	)
}

// Related leaves the container untouched when there is nothing related.
func Related(d *Document, cards []view.Card) {
	host := d.ByID(IDRelated)
	if host == nil || len(cards) == 0 {
		return
	}
	Clear(host)

	grid := El(atom.Div, "class", "related-grid")
	for _, c := range cards {
		grid.AppendChild(Append(El(atom.Article, "class", "related-card"),
			Append(El(atom.A, "href", c.Href),
				Append(El(atom.Div, "class", "thumb"), El(atom.Img, "src", c.Image, "alt", c.Title)),
				Append(El(atom.Div, "class", "c-body"),
					Append(El(atom.Span, "class", "tag"), Text(c.Category)),
					Append(El(atom.H3, "class", "c-title"), Text(c.Title)),
					starline(c.Stars, ""),
				),
			),
		))
	}
	Append(host, Append(El(atom.H2), Text(view.RelatedHeading)), grid)
}

// CommentPanel regenerates every row and the count, and points the post
// form at the review.
func CommentPanel(d *Document, p view.CommentPanel) {
	if count := d.ByID(IDCommentCount); count != nil {
		SetText(count, p.Count)
	}
	if form := d.ByID(IDCommentForm); form != nil {
		SetAttr(form, "action", CommentsAction(p.ReviewID))
	}
	if input := d.ByID(IDCommentInput); input != nil {
		if input.DataAtom == atom.Textarea {
			SetText(input, p.Draft)
		} else {
			SetAttr(input, "value", p.Draft)
		}
	}
	list := d.ByID(IDCommentList)
	if list == nil {
		return
	}
	Clear(list)
	for _, row := range p.Rows {
		list.AppendChild(CommentRow(p.ReviewID, row))
	}
}

// CommentRow carries its cid and the vote kind on each control, so a vote
// never depends on where in the row it landed.
func CommentRow(reviewID int, c view.CommentRow) *html.Node {
	return Append(El(atom.Div, "class", "comment", "data-cid", c.CID),
		Append(El(atom.Div, "class", "txt"), Text(c.Text)),
		Append(El(atom.Form, "class", "vote", "method", "post", "action", VotesAction(reviewID)),
			El(atom.Input, "type", "hidden", "name", "cid", "value", c.CID),
			Append(El(atom.Button, "class", "icon-btn up", "type", "submit", "name", "dir", "value", "up",
				"data-action", "upvote", "data-cid", c.CID), Text("👍")),
			Append(El(atom.Span, "class", "count"), Text(strconv.Itoa(c.Up))),
			Append(El(atom.Button, "class", "icon-btn down", "type", "submit", "name", "dir", "value", "down",
				"data-action", "downvote", "data-cid", c.CID), Text("👎")),
			Append(El(atom.Span, "class", "count"), Text(strconv.Itoa(c.Down))),
		),
	)
}

func Theme(d *Document, t theme.Theme) {
	if body := d.Body(); body != nil {
		if t == theme.Light {
			AddClass(body, "light")
		} else {
			RemoveClass(body, "light")
		}
	}
	if btn := d.ByID(IDThemeToggle); btn != nil {
		SetText(btn, t.Icon())
	}
}
