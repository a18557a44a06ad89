package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/directory"
	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	idgen "github.com/mvickers/leaguedesk/internal/platform/id"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

type CreateTeamInput struct {
	Name        string
	Description string
	LeagueID    string
	ManagerID   string
	ManagerName string
	RosterLimit int
}

type RenameTeamInput struct {
	TeamID   string
	CallerID string
	Name     string
	LeagueID string
}

type TeamService struct {
	teamRepo      team.Repository
	leagueRepo    league.Repository
	directoryRepo directory.Repository
	memberships   *MembershipService
	idGen         idgen.Generator
	logger        *logging.Logger
	now           func() time.Time
}

func NewTeamService(
	teamRepo team.Repository,
	leagueRepo league.Repository,
	directoryRepo directory.Repository,
	memberships *MembershipService,
	idGen idgen.Generator,
	logger *logging.Logger,
) *TeamService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamService{
		teamRepo:      teamRepo,
		leagueRepo:    leagueRepo,
		directoryRepo: directoryRepo,
		memberships:   memberships,
		idGen:         idGen,
		logger:        logger,
		now:           time.Now,
	}
}

// Create registers a new team, seats the creator as its manager, and
// updates the league and global directory indices. The index writes follow
// the record write; if they are lost to a failure, reconciliation restores
// them from the team record itself.
func (s *TeamService) Create(ctx context.Context, input CreateTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.ManagerID = strings.TrimSpace(input.ManagerID)
	if input.Name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}
	if input.ManagerID == "" {
		return team.Team{}, fmt.Errorf("%w: manager user id is required", ErrInvalidInput)
	}
	if input.LeagueID != "" {
		if _, ok, err := s.leagueRepo.GetByID(ctx, input.LeagueID); err != nil {
			return team.Team{}, fmt.Errorf("load league %s: %w", input.LeagueID, err)
		} else if !ok {
			return team.Team{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
		}
	}

	teamID, err := s.idGen.NewID()
	if err != nil {
		return team.Team{}, fmt.Errorf("generate team id: %w", err)
	}

	now := s.now().UTC()
	t := team.Team{
		ID:            teamID,
		Name:          input.Name,
		Description:   strings.TrimSpace(input.Description),
		LeagueID:      input.LeagueID,
		ManagerUserID: input.ManagerID,
		RosterLimit:   input.RosterLimit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.RosterLimit < 1 {
		t.RosterLimit = team.DefaultRosterLimit
	}
	if err := t.Validate(); err != nil {
		return team.Team{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.teamRepo.Save(ctx, t); err != nil {
		return team.Team{}, fmt.Errorf("save team %s: %w", teamID, err)
	}

	if _, err := s.memberships.Join(ctx, JoinInput{
		UserID:      input.ManagerID,
		DisplayName: input.ManagerName,
		TeamID:      teamID,
	}); err != nil {
		return team.Team{}, fmt.Errorf("seat manager on team %s: %w", teamID, err)
	}

	if err := s.directoryRepo.AddTeamToDirectory(ctx, teamID); err != nil {
		return team.Team{}, fmt.Errorf("index team %s: %w", teamID, err)
	}
	if t.LeagueID != "" {
		if err := s.directoryRepo.AddTeamToLeague(ctx, t.LeagueID, teamID); err != nil {
			return team.Team{}, fmt.Errorf("index team %s in league %s: %w", teamID, t.LeagueID, err)
		}
	}

	return t, nil
}

func (s *TeamService) Get(ctx context.Context, teamID string) (team.Team, []team.RosterEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Get")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return team.Team{}, nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, nil, fmt.Errorf("load team %s: %w", teamID, err)
	}
	if !ok {
		return team.Team{}, nil, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	roster, err := s.teamRepo.GetRoster(ctx, teamID)
	if err != nil {
		return team.Team{}, nil, fmt.Errorf("load roster for team %s: %w", teamID, err)
	}

	return t, roster, nil
}

// Rename merge-writes the team's name and league, moves the league index
// entry when the league changed, then fans the new names out to every
// member's membership record. Propagation failures are surfaced but the
// team record itself is already updated; re-running the rename converges
// the stragglers.
func (s *TeamService) Rename(ctx context.Context, input RenameTeamInput) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Rename")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.Name = strings.TrimSpace(input.Name)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.TeamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return team.Team{}, fmt.Errorf("%w: team name is required", ErrInvalidInput)
	}

	t, ok, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("load team %s: %w", input.TeamID, err)
	}
	if !ok {
		return team.Team{}, fmt.Errorf("%w: team=%s", ErrNotFound, input.TeamID)
	}
	if input.CallerID != "" && t.ManagerUserID != input.CallerID {
		return team.Team{}, fmt.Errorf("%w: only the team manager may rename the team", ErrForbidden)
	}
	if input.LeagueID != "" && input.LeagueID != t.LeagueID {
		if _, ok, err := s.leagueRepo.GetByID(ctx, input.LeagueID); err != nil {
			return team.Team{}, fmt.Errorf("load league %s: %w", input.LeagueID, err)
		} else if !ok {
			return team.Team{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
		}
	}

	prevLeagueID := t.LeagueID
	t.Name = input.Name
	t.LeagueID = input.LeagueID
	t.UpdatedAt = s.now().UTC()
	if err := s.teamRepo.Save(ctx, t); err != nil {
		return team.Team{}, fmt.Errorf("save team %s: %w", input.TeamID, err)
	}

	if prevLeagueID != t.LeagueID {
		if prevLeagueID != "" {
			if err := s.directoryRepo.RemoveTeamFromLeague(ctx, prevLeagueID, t.ID); err != nil {
				return team.Team{}, fmt.Errorf("unindex team %s from league %s: %w", t.ID, prevLeagueID, err)
			}
		}
		if t.LeagueID != "" {
			if err := s.directoryRepo.AddTeamToLeague(ctx, t.LeagueID, t.ID); err != nil {
				return team.Team{}, fmt.Errorf("index team %s in league %s: %w", t.ID, t.LeagueID, err)
			}
		}
	}

	if err := s.memberships.PropagateTeamRename(ctx, t.ID, t.Name, t.LeagueID); err != nil {
		return t, err
	}

	return t, nil
}

// Delete removes a team and everything hanging off it: every member's
// membership, the roster, the payment map, and the index entries. Each step
// is independent; the loop tolerates partial failure and the call can be
// retried until everything is gone.
func (s *TeamService) Delete(ctx context.Context, teamID, callerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.Delete")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	t, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load team %s: %w", teamID, err)
	}
	if !ok {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	if callerID != "" && t.ManagerUserID != callerID {
		return fmt.Errorf("%w: only the team manager may delete the team", ErrForbidden)
	}

	roster, err := s.teamRepo.GetRoster(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load roster for team %s: %w", teamID, err)
	}

	var failures []error
	for _, entry := range roster {
		if err := s.memberships.Leave(ctx, entry.UserID, teamID); err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("remove members of team %s: %w", teamID, errors.Join(failures...))
	}

	if err := s.teamRepo.DeleteRoster(ctx, teamID); err != nil {
		return fmt.Errorf("delete roster for team %s: %w", teamID, err)
	}
	if err := s.teamRepo.DeletePaymentFlags(ctx, teamID); err != nil {
		return fmt.Errorf("delete payment flags for team %s: %w", teamID, err)
	}
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("delete team %s: %w", teamID, err)
	}

	if t.LeagueID != "" {
		if err := s.directoryRepo.RemoveTeamFromLeague(ctx, t.LeagueID, teamID); err != nil {
			return fmt.Errorf("unindex team %s from league %s: %w", teamID, t.LeagueID, err)
		}
	}
	if err := s.directoryRepo.RemoveTeamFromDirectory(ctx, teamID); err != nil {
		return fmt.Errorf("unindex team %s: %w", teamID, err)
	}

	return nil
}
