package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

type AssignAdminInput struct {
	LeagueID string
	// AdminUserID empty means unassignment: the forward pointer is cleared
	// and the league leaves the prior admin's reverse index.
	AdminUserID string
}

type AssignAdminResult struct {
	LeagueID    string `json:"league_id"`
	AdminUserID string `json:"admin_user_id,omitempty"`
}

// AdminService assigns or clears a league's admin while keeping the forward
// pointer and the per-admin reverse index mutually consistent. Consistency
// is eventual: the pointer write and the two index writes are independent,
// and a failure between them is healed by re-running the assignment.
type AdminService struct {
	leagueRepo league.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewAdminService(leagueRepo league.Repository, logger *logging.Logger) *AdminService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminService{
		leagueRepo: leagueRepo,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *AdminService) Assign(ctx context.Context, input AssignAdminInput) (AssignAdminResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.Assign")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.AdminUserID = strings.TrimSpace(input.AdminUserID)
	if input.LeagueID == "" {
		return AssignAdminResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	l, ok, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return AssignAdminResult{}, fmt.Errorf("load league %s: %w", input.LeagueID, err)
	}
	if !ok {
		return AssignAdminResult{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}

	prevAdmin := l.AdminUserID

	// Merge-write: only the admin pointer and the timestamp change; every
	// other league field rides along from the fresh read.
	l.AdminUserID = input.AdminUserID
	l.UpdatedAt = s.now().UTC()
	if err := s.leagueRepo.Save(ctx, l); err != nil {
		return AssignAdminResult{}, fmt.Errorf("save league %s: %w", input.LeagueID, err)
	}

	// The reverse-index mutations below read through the codec, so a legacy
	// single-string index record is folded into the canonical set as a side
	// effect of the assignment.
	if prevAdmin != "" && prevAdmin != input.AdminUserID {
		if err := s.leagueRepo.RemoveAdminLeague(ctx, prevAdmin, input.LeagueID); err != nil {
			return AssignAdminResult{}, fmt.Errorf("remove league %s from admin %s index: %w", input.LeagueID, prevAdmin, err)
		}
	}
	if input.AdminUserID != "" {
		if err := s.leagueRepo.AddAdminLeague(ctx, input.AdminUserID, input.LeagueID); err != nil {
			return AssignAdminResult{}, fmt.Errorf("add league %s to admin %s index: %w", input.LeagueID, input.AdminUserID, err)
		}
	}

	if prevAdmin != input.AdminUserID {
		s.logger.InfoContext(ctx, "league admin reassigned",
			"league_id", input.LeagueID, "prev_admin", prevAdmin, "new_admin", input.AdminUserID)
	}

	return AssignAdminResult{
		LeagueID:    input.LeagueID,
		AdminUserID: input.AdminUserID,
	}, nil
}
