// Package site runs the page controllers and serves the HTTP surface.
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"reviewhub/internal/catalog"
	"reviewhub/internal/filter"
	"reviewhub/internal/metrics"
	"reviewhub/internal/panel"
	"reviewhub/internal/render"
	"reviewhub/internal/storage"
	"reviewhub/internal/theme"
	"reviewhub/internal/view"
)

//go:embed pages/*
var pages embed.FS

const (
	HomePage   = "index.html"
	DetailPage = "review.html"
)

type Site struct {
	Source   catalog.Source
	Provider storage.Provider
	Panels   *panel.Service
	Hub      *panel.Hub
	Metrics  *metrics.Metrics
	Logger   *zap.Logger

	snap atomic.Pointer[catalog.Snapshot]
}

func New(src catalog.Source, provider storage.Provider, m *metrics.Metrics, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Site{
		Source:   src,
		Provider: provider,
		Panels:   panel.NewService(provider, panel.UUIDv7{}, m, logger),
		Hub:      panel.NewHub(),
		Metrics:  m,
		Logger:   logger,
	}
	s.snap.Store(catalog.Empty())
	return s
}

// Reload fetches the collection again and swaps it in. A failed fetch
// leaves an empty snapshot, never an error.
func (s *Site) Reload(ctx context.Context) *catalog.Snapshot {
	snap := catalog.Load(ctx, s.Source, s.Logger)
	s.SetSnapshot(snap)
	return snap
}

func (s *Site) SetSnapshot(snap *catalog.Snapshot) {
	if snap == nil {
		snap = catalog.Empty()
	}
	s.snap.Store(snap)
	s.Metrics.SetReviews(snap.Len())
}

func (s *Site) Snapshot() *catalog.Snapshot {
	return s.snap.Load()
}

// Request carries what a controller reads from the address bar and the
// client profile.
type Request struct {
	Profile  string
	Category string
	Query    string
	ID       string
	Draft    string
}

func (s *Site) Theme(ctx context.Context, profile string) theme.Theme {
	t, err := theme.Service{Port: s.Provider.For(profile)}.Current(ctx)
	if err != nil {
		s.Logger.Warn("read theme failed", zap.Error(err))
	}
	return t
}

// Page renders one embedded page shell.
func (s *Site) Page(ctx context.Context, name string, req Request) ([]byte, error) {
	shell, err := pages.ReadFile("pages/" + name)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", name, err)
	}
	doc, err := s.Boot(ctx, shell, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Boot applies the theme, then runs each controller whose root element the
// shell carries. A shell with neither root renders unchanged apart from the
// theme.
func (s *Site) Boot(ctx context.Context, shell []byte, req Request) (*render.Document, error) {
	doc, err := render.Parse(bytes.NewReader(shell))
	if err != nil {
		return nil, err
	}

	render.Theme(doc, s.Theme(ctx, req.Profile))

	if doc.ByID(render.IDGrid) != nil {
		s.home(doc, req)
	}
	if doc.ByID(render.IDDetail) != nil {
		s.detail(ctx, doc, req)
	}
	return doc, nil
}

func (s *Site) home(doc *render.Document, req Request) {
	all := s.Snapshot().All()

	category := req.Category
	if category == "" {
		category = filter.All
	}
	query := filter.Normalize(req.Query)

	render.Hero(doc, view.Featured(all))
	render.Chips(doc, filter.Categories(all))
	render.Filters(doc, category, query)
	render.Grid(doc, view.NewGrid(filter.Filter(all, category, query)))
	s.Metrics.Filtered(category != filter.All, query != "")
}

func (s *Site) detail(ctx context.Context, doc *render.Document, req Request) {
	d := view.NewDetail(s.Snapshot(), req.ID)
	render.Detail(doc, d)
	if d.NotFound {
		return
	}

	p := s.Panels.Panel(req.Profile, d.Article.ID).View(ctx)
	p.Draft = req.Draft
	render.CommentPanel(doc, p)
	render.Related(doc, d.Related)
}
