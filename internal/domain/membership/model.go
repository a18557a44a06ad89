package membership

import "time"

// Membership links one user to one team within one league. TeamName and
// LeagueName are denormalized copies kept current by rename propagation;
// they can be briefly stale after a partial fan-out.
type Membership struct {
	UserID     string    `json:"userId"`
	TeamID     string    `json:"teamId"`
	LeagueID   string    `json:"leagueId,omitempty"`
	IsManager  bool      `json:"isManager"`
	TeamName   string    `json:"teamName"`
	LeagueName string    `json:"leagueName,omitempty"`
	JoinedAt   time.Time `json:"joinedAt"`
}
