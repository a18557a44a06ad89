package league

import (
	"fmt"
	"time"
)

// League is a league record. AdminUserID is the forward admin pointer; the
// per-admin reverse index lives under its own keys and is kept consistent
// with this pointer eventually, not atomically.
type League struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AdminUserID string    `json:"adminUserId,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

func (l League) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}
