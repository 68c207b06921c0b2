// Package comments persists each review's comment list through a storage port.
package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"reviewhub/internal/storage"
	"reviewhub/pkg/models"
)

// Key is the storage key holding one review's comments.
func Key(reviewID int) string {
	return "er-comments-" + strconv.Itoa(reviewID)
}

type Store struct {
	Port   storage.Port
	Logger *zap.Logger
}

func NewStore(port storage.Port, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{Port: port, Logger: logger}
}

// Load never fails: a missing key, a corrupt value and a read error all
// come back as an empty list.
func (s *Store) Load(ctx context.Context, reviewID int) []models.Comment {
	raw, ok, err := s.Port.Get(ctx, Key(reviewID))
	if err != nil {
		s.Logger.Warn("read comments failed", zap.Int("review_id", reviewID), zap.Error(err))
		return []models.Comment{}
	}
	if !ok {
		return []models.Comment{}
	}

	var out []models.Comment
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		s.Logger.Debug("discarding unreadable comments", zap.Int("review_id", reviewID))
		return []models.Comment{}
	}
	return out
}

// Save overwrites the whole list.
func (s *Store) Save(ctx context.Context, reviewID int, list []models.Comment) error {
	if list == nil {
		list = []models.Comment{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal comments for %d: %w", reviewID, err)
	}
	if err := s.Port.Set(ctx, Key(reviewID), string(b)); err != nil {
		return fmt.Errorf("save comments for %d: %w", reviewID, err)
	}
	return nil
}
