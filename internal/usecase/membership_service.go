package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/domain/membership"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

type JoinInput struct {
	UserID      string
	DisplayName string
	TeamID      string
}

// MembershipService is the sole path through which a roster gains or loses
// a member and through which denormalized names are kept current.
//
// Every operation validates against freshly read state, then performs its
// writes as independent read-modify-write calls: the store has no multi-key
// transactions, so a racing writer between validation and write is tolerated
// as a rare consistency hazard rather than prevented. Idempotent retries and
// reconciliation are the convergence mechanism.
type MembershipService struct {
	teamRepo       team.Repository
	membershipRepo membership.Repository
	leagueRepo     league.Repository
	logger         *logging.Logger
	now            func() time.Time
}

func NewMembershipService(
	teamRepo team.Repository,
	membershipRepo membership.Repository,
	leagueRepo league.Repository,
	logger *logging.Logger,
) *MembershipService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MembershipService{
		teamRepo:       teamRepo,
		membershipRepo: membershipRepo,
		leagueRepo:     leagueRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Join adds a user to a team's roster, records the membership, and lazily
// initializes the team's payment flag map with the new member unpaid.
func (s *MembershipService) Join(ctx context.Context, input JoinInput) (membership.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Join")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.UserID == "" {
		return membership.Membership{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return membership.Membership{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if input.DisplayName == "" {
		input.DisplayName = input.UserID
	}

	t, ok, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		return membership.Membership{}, fmt.Errorf("load team %s: %w", input.TeamID, err)
	}
	if !ok {
		return membership.Membership{}, fmt.Errorf("%w: team=%s", ErrNotFound, input.TeamID)
	}

	if t.LeagueID != "" {
		existing, err := s.membershipRepo.ListByUser(ctx, input.UserID)
		if err != nil {
			return membership.Membership{}, fmt.Errorf("load memberships for user %s: %w", input.UserID, err)
		}
		for _, m := range existing {
			if m.LeagueID == t.LeagueID && m.TeamID != input.TeamID {
				return membership.Membership{}, fmt.Errorf("%w: league=%s team=%s", ErrAlreadyOnTeamInLeague, t.LeagueID, m.TeamID)
			}
		}
	}

	roster, err := s.teamRepo.GetRoster(ctx, input.TeamID)
	if err != nil {
		return membership.Membership{}, fmt.Errorf("load roster for team %s: %w", input.TeamID, err)
	}
	if team.HasMember(roster, input.UserID) {
		// Re-joining the same team is a no-op for the roster; fall through
		// so the membership record is refreshed.
	} else if len(roster) >= t.RosterLimit {
		return membership.Membership{}, fmt.Errorf("%w: limit=%d", ErrTeamFull, t.RosterLimit)
	}

	leagueName := s.lookupLeagueName(ctx, t.LeagueID)
	joinedAt := s.now().UTC()

	// Validation is done; from here on each write is independent. A failure
	// partway leaves a partial join that the next retry completes.
	if !team.HasMember(roster, input.UserID) {
		roster = append(roster, team.RosterEntry{
			UserID:      input.UserID,
			DisplayName: input.DisplayName,
			IsManager:   t.ManagerUserID == input.UserID,
			JoinedAt:    joinedAt,
		})
		if err := s.teamRepo.SaveRoster(ctx, input.TeamID, roster); err != nil {
			return membership.Membership{}, fmt.Errorf("save roster for team %s: %w", input.TeamID, err)
		}
	}

	m := membership.Membership{
		UserID:     input.UserID,
		TeamID:     input.TeamID,
		LeagueID:   t.LeagueID,
		IsManager:  t.ManagerUserID == input.UserID,
		TeamName:   t.Name,
		LeagueName: leagueName,
		JoinedAt:   joinedAt,
	}
	if err := s.membershipRepo.Save(ctx, m); err != nil {
		return membership.Membership{}, fmt.Errorf("save membership for user %s: %w", input.UserID, err)
	}

	flags, err := s.teamRepo.GetPaymentFlags(ctx, input.TeamID)
	if err != nil {
		return membership.Membership{}, fmt.Errorf("load payment flags for team %s: %w", input.TeamID, err)
	}
	if flags == nil {
		flags = make(map[string]bool, 1)
	}
	if _, exists := flags[input.UserID]; !exists {
		flags[input.UserID] = false
		if err := s.teamRepo.SavePaymentFlags(ctx, input.TeamID, flags); err != nil {
			return membership.Membership{}, fmt.Errorf("save payment flags for team %s: %w", input.TeamID, err)
		}
	}

	return m, nil
}

// ListForUser returns the user's current memberships across all teams.
func (s *MembershipService) ListForUser(ctx context.Context, userID string) ([]membership.Membership, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.ListForUser")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load memberships for user %s: %w", userID, err)
	}
	return memberships, nil
}

// Leave removes a user from a team. Removing an absent member is a no-op,
// which keeps retries of a half-finished removal safe.
func (s *MembershipService) Leave(ctx context.Context, userID, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.Leave")
	defer span.End()

	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || teamID == "" {
		return fmt.Errorf("%w: user id and team id are required", ErrInvalidInput)
	}

	roster, err := s.teamRepo.GetRoster(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load roster for team %s: %w", teamID, err)
	}
	kept := make([]team.RosterEntry, 0, len(roster))
	for _, entry := range roster {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	if len(kept) != len(roster) {
		if err := s.teamRepo.SaveRoster(ctx, teamID, kept); err != nil {
			return fmt.Errorf("save roster for team %s: %w", teamID, err)
		}
	}

	if err := s.membershipRepo.Remove(ctx, userID, teamID); err != nil {
		return fmt.Errorf("remove membership for user %s: %w", userID, err)
	}

	return nil
}

// PropagateTeamRename rewrites the denormalized team and league names on
// every roster member's membership record. One team change fans out to N
// user records; an interruption leaves a mixed state that a full re-run
// converges, so the whole pass is idempotent by construction.
func (s *MembershipService) PropagateTeamRename(ctx context.Context, teamID, newName, newLeagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MembershipService.PropagateTeamRename")
	defer span.End()

	leagueName := s.lookupLeagueName(ctx, newLeagueID)

	roster, err := s.teamRepo.GetRoster(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load roster for team %s: %w", teamID, err)
	}

	var failures []error
	for _, entry := range roster {
		m, ok, err := s.membershipRepo.Get(ctx, entry.UserID, teamID)
		if err != nil {
			failures = append(failures, fmt.Errorf("load membership user=%s: %w", entry.UserID, err))
			continue
		}
		if !ok {
			// Roster and membership drifted apart; reconcile by recreating
			// the record from what the roster knows.
			m = membership.Membership{
				UserID:    entry.UserID,
				TeamID:    teamID,
				IsManager: entry.IsManager,
				JoinedAt:  entry.JoinedAt,
			}
		}
		if m.TeamName == newName && m.LeagueID == newLeagueID && m.LeagueName == leagueName {
			continue
		}
		m.TeamName = newName
		m.LeagueID = newLeagueID
		m.LeagueName = leagueName
		if err := s.membershipRepo.Save(ctx, m); err != nil {
			failures = append(failures, fmt.Errorf("save membership user=%s: %w", entry.UserID, err))
		}
	}

	if len(failures) > 0 {
		s.logger.WarnContext(ctx, "rename propagation left members stale",
			"team_id", teamID, "failed", len(failures), "total", len(roster))
		return fmt.Errorf("propagate rename for team %s: %w", teamID, errors.Join(failures...))
	}

	return nil
}

func (s *MembershipService) lookupLeagueName(ctx context.Context, leagueID string) string {
	if leagueID == "" {
		return ""
	}
	l, ok, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil || !ok {
		// A missing league record only costs the denormalized name; the
		// next propagation run fills it in.
		return ""
	}
	return l.Name
}
