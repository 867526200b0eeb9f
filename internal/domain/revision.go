package domain

import "time"

// Revision is a snapshot of a document's content. Listings leave Content
// empty and report its Size in bytes.
type Revision struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Label      string    `json:"label"`
	Content    string    `json:"content,omitempty"`
	Size       int       `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
}
