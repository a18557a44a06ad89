package invite

import "time"

// TTL bounds both invite kinds. An invite transitions Issued -> Redeemed or
// Issued -> Expired and nothing else.
const TTL = 14 * 24 * time.Hour

// Invite is a single-use credential authorizing a join into one team. Token
// invites are stored under a one-way hash of the raw token; code invites are
// stored under the short code itself.
type Invite struct {
	TeamID    string    `json:"teamId"`
	CreatedBy string    `json:"createdBy,omitempty"`
	Uses      int       `json:"uses"`
	CreatedAt time.Time `json:"createdAt"`
}
