package models

import (
	"bytes"
	"encoding/json"
	"math"
)

// Review is one entry of the data file. It is never mutated after load.
type Review struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Rating   Rating   `json:"rating"`
	Image    string   `json:"image"`
	Snippet  string   `json:"snippet,omitempty"`
	Content  string   `json:"content,omitempty"`
	Pros     []string `json:"pros,omitempty"`
	Cons     []string `json:"cons,omitempty"`
}

// Rating keeps the stored value as-is (out-of-range included).
// Anything that is not an integral number decodes to 0.
type Rating int

func (r *Rating) UnmarshalJSON(b []byte) error {
	*r = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		// strings, bools, objects: treated as missing
		return nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	*r = Rating(int(f))
	return nil
}
