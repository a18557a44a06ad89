package team

import (
	"fmt"
	"time"
)

// DefaultRosterLimit applies when a team is created without an explicit cap.
const DefaultRosterLimit = 8

// Team is a roster-bearing club. LeagueID may be empty: an unassigned team
// is a valid state, not an error.
type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	LeagueID      string    `json:"leagueId,omitempty"`
	ManagerUserID string    `json:"managerUserId"`
	RosterLimit   int       `json:"rosterLimit"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.ManagerUserID == "" {
		return fmt.Errorf("team manager user id is required")
	}
	if t.RosterLimit < 1 {
		return fmt.Errorf("team roster limit must be positive")
	}
	return nil
}

// RosterEntry is one member of a team's ordered roster.
type RosterEntry struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	IsManager   bool      `json:"isManager"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// HasMember reports whether userID already appears in the roster.
func HasMember(roster []RosterEntry, userID string) bool {
	for _, entry := range roster {
		if entry.UserID == userID {
			return true
		}
	}
	return false
}
