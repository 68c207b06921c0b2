// Package panel is the comment panel of the detail page: a pure reducer over
// typed actions plus the service that loads, persists and re-renders it.
package panel

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reviewhub/internal/comments"
	"reviewhub/internal/metrics"
	"reviewhub/internal/storage"
	"reviewhub/internal/view"
	"reviewhub/pkg/models"
)

type Action interface {
	Name() string
}

type Post struct{ Text string }
type Upvote struct{ CID string }
type Downvote struct{ CID string }

func (Post) Name() string     { return "post" }
func (Upvote) Name() string   { return "upvote" }
func (Downvote) Name() string { return "downvote" }

type State struct {
	ReviewID int
	Comments []models.Comment
	Draft    string
}

type IDGenerator interface {
	Next() string
}

// UUIDv7 issues time-ordered comment ids.
type UUIDv7 struct{}

func (UUIDv7) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Reduce applies one action. It never mutates s and reports whether the
// comment list changed.
func Reduce(s State, a Action, ids IDGenerator) (State, bool) {
	switch a := a.(type) {
	case Post:
		text := strings.TrimSpace(a.Text)
		if text == "" {
			s.Draft = a.Text
			return s, false
		}
		next := make([]models.Comment, len(s.Comments), len(s.Comments)+1)
		copy(next, s.Comments)
		next = append(next, models.Comment{CID: ids.Next(), Text: text})
		return State{ReviewID: s.ReviewID, Comments: next}, true

	case Upvote:
		return vote(s, a.CID, 1, 0)
	case Downvote:
		return vote(s, a.CID, 0, 1)
	}
	return s, false
}

func vote(s State, cid string, up, down int) (State, bool) {
	for i, c := range s.Comments {
		if c.CID != cid {
			continue
		}
		next := make([]models.Comment, len(s.Comments))
		copy(next, s.Comments)
		next[i].Up += up
		next[i].Down += down
		s.Comments = next
		return s, true
	}
	return s, false
}

type Service struct {
	Provider storage.Provider
	IDs      IDGenerator
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	locks *Locks
}

func NewService(provider storage.Provider, ids IDGenerator, m *metrics.Metrics, logger *zap.Logger) *Service {
	if ids == nil {
		ids = UUIDv7{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Provider: provider, IDs: ids, Metrics: m, Logger: logger, locks: NewLocks()}
}

// Panel is one client's comment panel for one review.
type Panel struct {
	svc      *Service
	profile  string
	reviewID int
	store    *comments.Store
}

func (s *Service) Panel(profile string, reviewID int) *Panel {
	return &Panel{
		svc:      s,
		profile:  profile,
		reviewID: reviewID,
		store:    comments.NewStore(s.Provider.For(profile), s.Logger),
	}
}

func (p *Panel) Comments(ctx context.Context) []models.Comment {
	return p.store.Load(ctx, p.reviewID)
}

func (p *Panel) View(ctx context.Context) view.CommentPanel {
	return view.NewCommentPanel(p.reviewID, p.Comments(ctx), "")
}

// Dispatch runs one action to completion: load, reduce, persist when the
// list changed, re-render.
func (p *Panel) Dispatch(ctx context.Context, a Action) (view.CommentPanel, error) {
	out, _, err := p.Apply(ctx, a)
	return out, err
}

// Apply is Dispatch that also reports whether the list changed. Actions for
// the same profile never interleave.
func (p *Panel) Apply(ctx context.Context, a Action) (view.CommentPanel, bool, error) {
	unlock := p.svc.locks.Lock(p.profile)
	defer unlock()

	state := State{ReviewID: p.reviewID, Comments: p.store.Load(ctx, p.reviewID)}
	next, changed := Reduce(state, a, p.svc.IDs)
	p.svc.Metrics.CommentAction(a.Name(), changed)

	if changed {
		if err := p.store.Save(ctx, p.reviewID, next.Comments); err != nil {
			return view.CommentPanel{}, false, fmt.Errorf("%s on review %d: %w", a.Name(), p.reviewID, err)
		}
	}
	return view.NewCommentPanel(p.reviewID, next.Comments, next.Draft), changed, nil
}
