// Package catalog holds the review collection loaded once at startup.
package catalog

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"reviewhub/pkg/models"
)

// Snapshot is the immutable result of one load. The zero value is an
// empty collection and is safe to use.
type Snapshot struct {
	reviews []models.Review
	byID    map[int]int
	raw     []byte
	version string
}

// Empty returns a snapshot with no reviews.
func Empty() *Snapshot {
	return &Snapshot{}
}

// NewSnapshot builds a snapshot from already-decoded reviews.
// Duplicate ids keep the first occurrence for lookups.
func NewSnapshot(reviews []models.Review) *Snapshot {
	s := &Snapshot{
		reviews: append([]models.Review(nil), reviews...),
		byID:    make(map[int]int, len(reviews)),
	}
	for i, r := range s.reviews {
		if _, dup := s.byID[r.ID]; !dup {
			s.byID[r.ID] = i
		}
	}
	return s
}

// All returns the collection in source order. The slice is a copy.
func (s *Snapshot) All() []models.Review {
	if s == nil {
		return nil
	}
	return append([]models.Review(nil), s.reviews...)
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.reviews)
}

func (s *Snapshot) FindByID(id int) (models.Review, bool) {
	if s == nil {
		return models.Review{}, false
	}
	i, ok := s.byID[id]
	if !ok {
		return models.Review{}, false
	}
	return s.reviews[i], true
}

// Raw is the payload the snapshot was parsed from, nil when built in code
// or when loading failed.
func (s *Snapshot) Raw() []byte {
	if s == nil {
		return nil
	}
	return s.raw
}

// Version is a content digest of Raw, empty when there is no payload.
func (s *Snapshot) Version() string {
	if s == nil {
		return ""
	}
	return s.version
}

var ErrNotArray = errors.New("catalog: payload is not a JSON array of objects")

// Parse decodes a data file. Anything but an array of objects is rejected.
func Parse(data []byte) ([]models.Review, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotArray
		}
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if items == nil {
		// top-level null
		return nil, ErrNotArray
	}

	out := make([]models.Review, 0, len(items))
	for i, item := range items {
		if !bytes.HasPrefix(bytes.TrimSpace(item), []byte("{")) {
			return nil, fmt.Errorf("%w: element %d", ErrNotArray, i)
		}
		var r models.Review
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("catalog: element %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Load fetches and parses the collection. It never fails: a fetch or parse
// error is logged and an empty snapshot is returned.
func Load(ctx context.Context, src Source, logger *zap.Logger) *Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := src.Fetch(ctx)
	if err != nil {
		logger.Warn("failed to load reviews", zap.String("source", src.Name()), zap.Error(err))
		return Empty()
	}

	reviews, err := Parse(data)
	if err != nil {
		logger.Warn("failed to parse reviews", zap.String("source", src.Name()), zap.Error(err))
		return Empty()
	}

	s := NewSnapshot(reviews)
	s.raw = data
	sum := blake2b.Sum256(data)
	s.version = hex.EncodeToString(sum[:])

	logger.Info("reviews loaded",
		zap.String("source", src.Name()),
		zap.Int("count", len(reviews)),
		zap.String("version", s.version[:12]),
	)
	return s
}
