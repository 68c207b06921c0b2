package models

// Comment belongs to exactly one review and is persisted with the
// rest of that review's list.
type Comment struct {
	CID  string `json:"cid"`
	Text string `json:"text"`
	Up   int    `json:"up"`
	Down int    `json:"down"`
}
