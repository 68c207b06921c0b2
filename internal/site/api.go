package site

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/filter"
	"reviewhub/internal/panel"
	"reviewhub/internal/profile"
	"reviewhub/internal/theme"
	"reviewhub/internal/view"
)

// RegisterAPI mounts the JSON API under rg (normally /api).
func (s *Site) RegisterAPI(rg *gin.RouterGroup) {
	rg.GET("/reviews", s.listReviews)                 // GET /api/reviews?category=&q=
	rg.GET("/reviews/:id", s.getReview)               // GET /api/reviews/:id
	rg.GET("/reviews/:id/comments", s.listComments)   // GET /api/reviews/:id/comments
	rg.POST("/reviews/:id/comments", s.createComment) // POST /api/reviews/:id/comments
	rg.POST("/reviews/:id/comments/:cid/upvote", s.voteComment(true))
	rg.POST("/reviews/:id/comments/:cid/downvote", s.voteComment(false))
	rg.GET("/reviews/:id/panel/ws", panel.WSHandler(s.Panels, s.Hub, s.known))
	rg.GET("/categories", s.listCategories)
	rg.GET("/theme", s.getTheme)
	rg.POST("/theme", s.setTheme)
}

func (s *Site) known(id int) bool {
	_, ok := s.Snapshot().FindByID(id)
	return ok
}

func (s *Site) listReviews(c *gin.Context) {
	category := c.DefaultQuery("category", filter.All)
	query := filter.Normalize(c.Query("q"))

	items := filter.Filter(s.Snapshot().All(), category, query)
	s.Metrics.Filtered(category != filter.All, query != "")

	c.JSON(http.StatusOK, gin.H{
		"total":    len(items),
		"category": category,
		"q":        query,
		"items":    items,
	})
}

func (s *Site) listCategories(c *gin.Context) {
	cats := filter.Categories(s.Snapshot().All())
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"items": append([]string{filter.All}, cats...)})
}

// reviewParam answers 404 for anything that is not a known review id.
func (s *Site) reviewParam(c *gin.Context) (int, bool) {
	id, ok := view.ParseID(c.Param("id"))
	if !ok || !s.known(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": view.NotFoundMessage})
		return 0, false
	}
	return id, true
}

func (s *Site) getReview(c *gin.Context) {
	d := view.NewDetail(s.Snapshot(), c.Param("id"))
	if d.NotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": d.Message})
		return
	}
	p := s.Panels.Panel(profile.ID(c), d.Article.ID).View(c.Request.Context())
	d.Comments = &p
	c.JSON(http.StatusOK, d)
}

func (s *Site) listComments(c *gin.Context) {
	id, ok := s.reviewParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Panels.Panel(profile.ID(c), id).View(c.Request.Context()))
}

type postCommentRequest struct {
	Text string `json:"text"`
}

func (s *Site) createComment(c *gin.Context) {
	id, ok := s.reviewParam(c)
	if !ok {
		return
	}

	var req postCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	s.apply(c, id, panel.Post{Text: req.Text}, http.StatusCreated, http.StatusOK)
}

func (s *Site) voteComment(up bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.reviewParam(c)
		if !ok {
			return
		}
		var action panel.Action = panel.Downvote{CID: c.Param("cid")}
		if up {
			action = panel.Upvote{CID: c.Param("cid")}
		}
		s.apply(c, id, action, http.StatusOK, http.StatusNotFound)
	}
}

// apply dispatches one action and answers with the re-rendered panel.
func (s *Site) apply(c *gin.Context, id int, action panel.Action, changedStatus, unchangedStatus int) {
	pid := profile.ID(c)
	next, changed, err := s.Panels.Panel(pid, id).Apply(c.Request.Context(), action)
	if err != nil {
		s.Logger.Error("comment action", zap.String("action", action.Name()), zap.Int("review_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save comments"})
		return
	}

	status := unchangedStatus
	if changed {
		status = changedStatus
		s.Hub.Broadcast(panel.RoomKey(pid, id), panel.Message{Type: "panel", ReviewID: id, Panel: &next})
	}
	c.JSON(status, gin.H{"changed": changed, "panel": next})
}

func themeBody(t theme.Theme) gin.H {
	return gin.H{"theme": t, "icon": t.Icon()}
}

func (s *Site) getTheme(c *gin.Context) {
	c.JSON(http.StatusOK, themeBody(s.Theme(c.Request.Context(), profile.ID(c))))
}

type setThemeRequest struct {
	Theme string `json:"theme"`
}

// setTheme toggles, or sets the theme named in the body.
func (s *Site) setTheme(c *gin.Context) {
	svc := theme.Service{Port: s.Provider.For(profile.ID(c))}
	ctx := c.Request.Context()

	var req setThemeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
			return
		}
	}

	var (
		next theme.Theme
		err  error
	)
	switch req.Theme {
	case "":
		next, err = svc.Toggle(ctx)
	case string(theme.Light), string(theme.Dark):
		next = theme.Theme(req.Theme)
		err = svc.Set(ctx, next)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme must be light or dark, got " + strconv.Quote(req.Theme)})
		return
	}
	if err != nil {
		s.Logger.Error("set theme", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save theme"})
		return
	}
	s.Metrics.ThemeToggled()
	c.JSON(http.StatusOK, themeBody(next))
}
