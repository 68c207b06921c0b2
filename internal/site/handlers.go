package site

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/panel"
	"reviewhub/internal/profile"
	"reviewhub/internal/theme"
	"reviewhub/internal/view"
)

// RegisterRoutes mounts the pages, the form endpoints and the data file.
// r must already run profile.Middleware.
func (s *Site) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", s.homePage)
	r.GET("/"+HomePage, s.homePage)
	r.GET("/"+DetailPage, s.detailPage)
	r.POST("/"+DetailPage+"/comments", s.postComment)
	r.POST("/"+DetailPage+"/votes", s.vote)
	r.POST("/theme/toggle", s.toggleTheme)
	r.GET("/reviews.json", s.reviewsJSON)
	r.GET("/style.css", s.stylesheet)
}

func (s *Site) homePage(c *gin.Context) {
	s.page(c, http.StatusOK, HomePage, Request{
		Profile:  profile.ID(c),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
}

func (s *Site) detailPage(c *gin.Context) {
	s.page(c, http.StatusOK, DetailPage, Request{
		Profile: profile.ID(c),
		ID:      c.Query("id"),
		Draft:   c.Query("draft"),
	})
}

func (s *Site) page(c *gin.Context, status int, name string, req Request) {
	body, err := s.Page(c.Request.Context(), name, req)
	if err != nil {
		s.Logger.Error("render page", zap.String("page", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

// reviewFromQuery resolves ?id= to a known review, or sends the client to
// the detail page, which shows the not-found message.
func (s *Site) reviewFromQuery(c *gin.Context) (int, bool) {
	raw := c.Query("id")
	id, ok := view.ParseID(raw)
	if ok {
		_, ok = s.Snapshot().FindByID(id)
	}
	if !ok {
		c.Redirect(http.StatusSeeOther, "/"+DetailPage+"?id="+url.QueryEscape(raw))
		return 0, false
	}
	return id, true
}

// commentsURL is the detail page scrolled to the comment panel, with the
// unsent draft carried along when there is one.
func commentsURL(id int, draft string) string {
	u := "/" + view.Href(id)
	if draft != "" {
		u += "&draft=" + url.QueryEscape(draft)
	}
	return u + "#comments"
}

func (s *Site) postComment(c *gin.Context) {
	id, ok := s.reviewFromQuery(c)
	if !ok {
		return
	}
	pid := profile.ID(c)
	text := c.PostForm("text")

	next, changed, err := s.Panels.Panel(pid, id).Apply(c.Request.Context(), panel.Post{Text: text})
	if err != nil {
		s.Logger.Error("post comment", zap.Int("review_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save comment"})
		return
	}
	if !changed {
		// nothing to post: back to the page with the draft kept
		c.Redirect(http.StatusSeeOther, commentsURL(id, next.Draft))
		return
	}
	s.Hub.Broadcast(panel.RoomKey(pid, id), panel.Message{Type: "panel", ReviewID: id, Panel: &next})
	c.Redirect(http.StatusSeeOther, commentsURL(id, ""))
}

func (s *Site) vote(c *gin.Context) {
	id, ok := s.reviewFromQuery(c)
	if !ok {
		return
	}
	pid := profile.ID(c)
	cid := c.PostForm("cid")

	var action panel.Action
	switch c.PostForm("dir") {
	case "up":
		action = panel.Upvote{CID: cid}
	case "down":
		action = panel.Downvote{CID: cid}
	default:
		c.Redirect(http.StatusSeeOther, commentsURL(id, ""))
		return
	}

	next, changed, err := s.Panels.Panel(pid, id).Apply(c.Request.Context(), action)
	if err != nil {
		s.Logger.Error("vote", zap.Int("review_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save vote"})
		return
	}
	if changed {
		s.Hub.Broadcast(panel.RoomKey(pid, id), panel.Message{Type: "panel", ReviewID: id, Panel: &next})
	}
	c.Redirect(http.StatusSeeOther, commentsURL(id, ""))
}

func (s *Site) toggleTheme(c *gin.Context) {
	svc := theme.Service{Port: s.Provider.For(profile.ID(c))}
	if _, err := svc.Toggle(c.Request.Context()); err != nil {
		s.Logger.Error("toggle theme", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save theme"})
		return
	}
	s.Metrics.ThemeToggled()
	c.Redirect(http.StatusSeeOther, backTo(c))
}

// backTo is the same-host page the request came from, or the homepage.
func backTo(c *gin.Context) string {
	ref, err := url.Parse(c.GetHeader("Referer"))
	if err != nil || ref.Host != c.Request.Host || !strings.HasPrefix(ref.Path, "/") {
		return "/"
	}
	return ref.RequestURI()
}

// reviewsJSON serves the data file exactly as loaded, keyed by the
// snapshot version.
func (s *Site) reviewsJSON(c *gin.Context) {
	snap := s.Snapshot()
	raw := snap.Raw()
	if raw == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "review data unavailable"})
		return
	}

	etag := `"` + snap.Version() + `"`
	c.Header("ETag", etag)
	c.Header("Cache-Control", "no-cache")
	if match := c.GetHeader("If-None-Match"); match != "" && (match == etag || match == "*") {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (s *Site) stylesheet(c *gin.Context) {
	b, err := pages.ReadFile("pages/style.css")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, "text/css; charset=utf-8", b)
}
