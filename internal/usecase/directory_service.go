package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mvickers/leaguedesk/internal/domain/directory"
	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/platform/cache"
)

const (
	leagueListCacheKey        = "directory:leagues"
	leagueTeamsCacheKeyPrefix = "directory:league-teams:"
)

// DirectoryService serves the enumeration reads. Directory indices are
// eventually consistent with the authoritative records anyway, so a short
// read-through cache costs nothing in correctness.
type DirectoryService struct {
	leagueRepo    league.Repository
	teamRepo      team.Repository
	directoryRepo directory.Repository
	cache         *cache.Store
}

func NewDirectoryService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	directoryRepo directory.Repository,
	cacheStore *cache.Store,
) *DirectoryService {
	return &DirectoryService{
		leagueRepo:    leagueRepo,
		teamRepo:      teamRepo,
		directoryRepo: directoryRepo,
		cache:         cacheStore,
	}
}

func (s *DirectoryService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DirectoryService.ListLeagues")
	defer span.End()

	load := func(ctx context.Context) (any, error) {
		ids, err := s.directoryRepo.LeagueDirectory(ctx)
		if err != nil {
			return nil, fmt.Errorf("load league directory: %w", err)
		}
		sort.Strings(ids)

		leagues := make([]league.League, 0, len(ids))
		for _, id := range ids {
			l, ok, err := s.leagueRepo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load league %s: %w", id, err)
			}
			if !ok {
				// The directory can briefly reference a league whose record
				// is gone; enumeration just skips it.
				continue
			}
			leagues = append(leagues, l)
		}
		return leagues, nil
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]league.League), nil
	}

	out, err := s.cache.GetOrLoad(ctx, leagueListCacheKey, load)
	if err != nil {
		return nil, err
	}
	return out.([]league.League), nil
}

func (s *DirectoryService) ListLeagueTeams(ctx context.Context, leagueID string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DirectoryService.ListLeagueTeams")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if _, ok, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		return nil, fmt.Errorf("load league %s: %w", leagueID, err)
	} else if !ok {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	load := func(ctx context.Context) (any, error) {
		ids, err := s.directoryRepo.LeagueTeamSet(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("load team set for league %s: %w", leagueID, err)
		}
		sort.Strings(ids)

		teams := make([]team.Team, 0, len(ids))
		for _, id := range ids {
			t, ok, err := s.teamRepo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("load team %s: %w", id, err)
			}
			if !ok {
				continue
			}
			teams = append(teams, t)
		}
		return teams, nil
	}

	if s.cache == nil {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return out.([]team.Team), nil
	}

	out, err := s.cache.GetOrLoad(ctx, leagueTeamsCacheKeyPrefix+leagueID, load)
	if err != nil {
		return nil, err
	}
	return out.([]team.Team), nil
}
