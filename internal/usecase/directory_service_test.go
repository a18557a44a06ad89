package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/infrastructure/repository/kvstore"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
	"github.com/mvickers/leaguedesk/internal/platform/cache"
)

type directoryFixture struct {
	kv            *store.MemoryKV
	leagueRepo    *kvstore.LeagueRepository
	teamRepo      *kvstore.TeamRepository
	directoryRepo *kvstore.DirectoryRepository
}

func newDirectoryFixture(t *testing.T) directoryFixture {
	t.Helper()

	kv := store.NewMemoryKV()
	return directoryFixture{
		kv:            kv,
		leagueRepo:    kvstore.NewLeagueRepository(kv),
		teamRepo:      kvstore.NewTeamRepository(kv),
		directoryRepo: kvstore.NewDirectoryRepository(kv),
	}
}

func (f directoryFixture) service(cacheStore *cache.Store) *DirectoryService {
	return NewDirectoryService(f.leagueRepo, f.teamRepo, f.directoryRepo, cacheStore)
}

func TestListLeaguesSkipsDanglingDirectoryEntries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newDirectoryFixture(t)

	if err := f.leagueRepo.Save(ctx, league.League{ID: "lg1", Name: "Sunday League"}); err != nil {
		t.Fatalf("seed league: %v", err)
	}
	for _, id := range []string{"lg1", "lg-gone"} {
		if err := f.directoryRepo.AddLeagueToDirectory(ctx, id); err != nil {
			t.Fatalf("seed directory: %v", err)
		}
	}

	leagues, err := f.service(nil).ListLeagues(ctx)
	if err != nil {
		t.Fatalf("ListLeagues: %v", err)
	}
	if len(leagues) != 1 || leagues[0].ID != "lg1" {
		t.Fatalf("leagues = %+v, want only the one with a record", leagues)
	}
}

func TestListLeagueTeamsSortedByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newDirectoryFixture(t)

	if err := f.leagueRepo.Save(ctx, league.League{ID: "lg1", Name: "Sunday League"}); err != nil {
		t.Fatalf("seed league: %v", err)
	}
	for _, tm := range []team.Team{
		{ID: "t2", Name: "Beta", LeagueID: "lg1", ManagerUserID: "u2", RosterLimit: 8},
		{ID: "t1", Name: "Alpha", LeagueID: "lg1", ManagerUserID: "u1", RosterLimit: 8},
	} {
		if err := f.teamRepo.Save(ctx, tm); err != nil {
			t.Fatalf("seed team %s: %v", tm.ID, err)
		}
		if err := f.directoryRepo.AddTeamToLeague(ctx, "lg1", tm.ID); err != nil {
			t.Fatalf("index team %s: %v", tm.ID, err)
		}
	}

	teams, err := f.service(nil).ListLeagueTeams(ctx, "lg1")
	if err != nil {
		t.Fatalf("ListLeagueTeams: %v", err)
	}
	if len(teams) != 2 || teams[0].ID != "t1" || teams[1].ID != "t2" {
		t.Fatalf("teams = %+v, want sorted by id", teams)
	}
}

func TestListLeagueTeamsUnknownLeague(t *testing.T) {
	t.Parallel()

	f := newDirectoryFixture(t)
	_, err := f.service(nil).ListLeagueTeams(context.Background(), "lg-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListLeagueTeams = %v, want ErrNotFound", err)
	}
}

func TestListLeaguesServesCachedResult(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newDirectoryFixture(t)
	svc := f.service(cache.NewStore(time.Minute))

	if err := f.leagueRepo.Save(ctx, league.League{ID: "lg1", Name: "Sunday League"}); err != nil {
		t.Fatalf("seed league: %v", err)
	}
	if err := f.directoryRepo.AddLeagueToDirectory(ctx, "lg1"); err != nil {
		t.Fatalf("seed directory: %v", err)
	}

	first, err := svc.ListLeagues(ctx)
	if err != nil || len(first) != 1 {
		t.Fatalf("first ListLeagues = (%v, %v)", first, err)
	}

	// A directory write after the first read is invisible until the cache
	// entry expires.
	if err := f.leagueRepo.Save(ctx, league.League{ID: "lg2", Name: "Tuesday League"}); err != nil {
		t.Fatalf("seed second league: %v", err)
	}
	if err := f.directoryRepo.AddLeagueToDirectory(ctx, "lg2"); err != nil {
		t.Fatalf("index second league: %v", err)
	}

	second, err := svc.ListLeagues(ctx)
	if err != nil {
		t.Fatalf("second ListLeagues: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("cached ListLeagues = %+v, want the stale single-league view", second)
	}
}
