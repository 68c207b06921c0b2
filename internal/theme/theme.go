// Package theme keeps the light/dark preference of one client.
package theme

import (
	"context"
	"fmt"

	"reviewhub/internal/storage"
)

const Key = "er-theme"

type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Parse reads a stored value. Only "light" is light; anything else,
// including an absent value, is dark.
func Parse(v string) Theme {
	if Theme(v) == Light {
		return Light
	}
	return Dark
}

func (t Theme) Flip() Theme {
	if t == Light {
		return Dark
	}
	return Light
}

// Icon is the label of the toggle control.
func (t Theme) Icon() string {
	if t == Light {
		return "☀️"
	}
	return "🌙"
}

// BodyClass is the class the page body carries, "" for dark.
func (t Theme) BodyClass() string {
	if t == Light {
		return "light"
	}
	return ""
}

type Service struct {
	Port storage.Port
}

func (s Service) Current(ctx context.Context) (Theme, error) {
	v, _, err := s.Port.Get(ctx, Key)
	if err != nil {
		return Dark, fmt.Errorf("read theme: %w", err)
	}
	return Parse(v), nil
}

func (s Service) Set(ctx context.Context, t Theme) error {
	if err := s.Port.Set(ctx, Key, string(Parse(string(t)))); err != nil {
		return fmt.Errorf("save theme: %w", err)
	}
	return nil
}

func (s Service) Toggle(ctx context.Context) (Theme, error) {
	cur, err := s.Current(ctx)
	if err != nil {
		return cur, err
	}
	next := cur.Flip()
	return next, s.Set(ctx, next)
}
