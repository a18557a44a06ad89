package usecase

import (
	"context"
	"sort"
	"testing"

	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/infrastructure/repository/kvstore"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

type reconcileFixture struct {
	kv            *store.MemoryKV
	teamRepo      *kvstore.TeamRepository
	directoryRepo *kvstore.DirectoryRepository
	svc           *ReconcileService
}

func newReconcileFixture(t *testing.T, staticLeagueIDs []string) reconcileFixture {
	t.Helper()

	kv := store.NewMemoryKV()
	f := reconcileFixture{
		kv:            kv,
		teamRepo:      kvstore.NewTeamRepository(kv),
		directoryRepo: kvstore.NewDirectoryRepository(kv),
	}
	f.svc = NewReconcileService(f.teamRepo, f.directoryRepo, staticLeagueIDs, logging.NewNop())
	return f
}

// seedLegacyLeague plants one id in each of the three team-set sources.
func (f reconcileFixture) seedLegacyLeague(t *testing.T, leagueID string) {
	t.Helper()
	ctx := context.Background()

	if err := f.kv.AddToSet(ctx, "league:"+leagueID+":teams", "a"); err != nil {
		t.Fatalf("seed canonical set: %v", err)
	}
	if err := f.kv.Set(ctx, "league:"+leagueID+":teamlist", "b", 0); err != nil {
		t.Fatalf("seed legacy list: %v", err)
	}
	if err := f.kv.Set(ctx, "league:"+leagueID+":teamcards", `[{"teamId":"c"}]`, 0); err != nil {
		t.Fatalf("seed legacy cards: %v", err)
	}
}

func TestReconcileUnionsAllSourcesAndRetiresLegacyList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReconcileFixture(t, nil)
	f.seedLegacyLeague(t, "lg1")

	result, err := f.svc.ReconcileLeagueTeamSets(ctx, ReconcileInput{LeagueIDs: []string{"lg1"}})
	if err != nil {
		t.Fatalf("ReconcileLeagueTeamSets: %v", err)
	}
	if result.LeagueCount != 1 || len(result.Rows) != 1 {
		t.Fatalf("result = %+v", result)
	}
	row := result.Rows[0]
	if row.LeagueID != "lg1" || row.Before != 1 || row.After != 3 || row.Error != "" {
		t.Fatalf("row = %+v", row)
	}

	ids, err := f.directoryRepo.LeagueTeamSet(ctx, "lg1")
	if err != nil {
		t.Fatalf("LeagueTeamSet: %v", err)
	}
	sort.Strings(ids)
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("canonical set = %v", ids)
	}
	if _, ok, _ := f.kv.Get(ctx, "league:lg1:teamlist"); ok {
		t.Fatal("legacy list survived reconciliation")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReconcileFixture(t, nil)
	f.seedLegacyLeague(t, "lg1")

	input := ReconcileInput{LeagueIDs: []string{"lg1"}}
	if _, err := f.svc.ReconcileLeagueTeamSets(ctx, input); err != nil {
		t.Fatalf("first run: %v", err)
	}
	result, err := f.svc.ReconcileLeagueTeamSets(ctx, input)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	row := result.Rows[0]
	if row.Before != 3 || row.After != 3 {
		t.Fatalf("second run row = %+v, want a 3->3 no-op", row)
	}
}

func TestReconcileDryRunDoesNotWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReconcileFixture(t, nil)
	f.seedLegacyLeague(t, "lg1")

	result, err := f.svc.ReconcileLeagueTeamSets(ctx, ReconcileInput{LeagueIDs: []string{"lg1"}, DryRun: true})
	if err != nil {
		t.Fatalf("ReconcileLeagueTeamSets: %v", err)
	}
	if !result.DryRun || result.Rows[0].After != 3 {
		t.Fatalf("result = %+v", result)
	}

	ids, err := f.directoryRepo.LeagueTeamSet(ctx, "lg1")
	if err != nil || len(ids) != 1 {
		t.Fatalf("canonical set after dry run = (%v, %v), want untouched", ids, err)
	}
	if _, ok, _ := f.kv.Get(ctx, "league:lg1:teamlist"); !ok {
		t.Fatal("dry run deleted the legacy list")
	}
}

func TestReconcileDiscoversLeaguesAndSortsRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReconcileFixture(t, nil)
	f.seedLegacyLeague(t, "lg-b")
	f.seedLegacyLeague(t, "lg-a")
	for _, leagueID := range []string{"lg-b", "lg-a"} {
		if err := f.directoryRepo.AddLeagueToDirectory(ctx, leagueID); err != nil {
			t.Fatalf("seed league directory: %v", err)
		}
	}

	result, err := f.svc.ReconcileLeagueTeamSets(ctx, ReconcileInput{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("ReconcileLeagueTeamSets: %v", err)
	}
	if result.LeagueCount != 2 || result.WorkerCount != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(result.Rows) != 2 || result.Rows[0].LeagueID != "lg-a" || result.Rows[1].LeagueID != "lg-b" {
		t.Fatalf("rows = %+v, want sorted by league id", result.Rows)
	}
}

func TestRebuildDirectoriesFromRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newReconcileFixture(t, []string{"lg-static"})

	for _, tm := range []team.Team{
		{ID: "t1", Name: "Alpha", LeagueID: "lg1", ManagerUserID: "u1", RosterLimit: 8},
		{ID: "t2", Name: "Beta", LeagueID: "lg2", ManagerUserID: "u2", RosterLimit: 8},
	} {
		if err := f.teamRepo.Save(ctx, tm); err != nil {
			t.Fatalf("seed team %s: %v", tm.ID, err)
		}
	}
	// A directory entry with no surviving record must not be dropped.
	if err := f.directoryRepo.AddTeamToDirectory(ctx, "t-ghost"); err != nil {
		t.Fatalf("seed directory: %v", err)
	}

	teamCount, err := f.svc.RebuildTeamDirectory(ctx)
	if err != nil || teamCount != 3 {
		t.Fatalf("RebuildTeamDirectory = (%d, %v), want 3", teamCount, err)
	}
	dir, err := f.directoryRepo.TeamDirectory(ctx)
	if err != nil || len(dir) != 3 {
		t.Fatalf("team directory = (%v, %v)", dir, err)
	}

	leagueCount, err := f.svc.RebuildLeagueDirectory(ctx)
	if err != nil || leagueCount != 3 {
		t.Fatalf("RebuildLeagueDirectory = (%d, %v), want static + 2 referenced", leagueCount, err)
	}
	leagues, err := f.directoryRepo.LeagueDirectory(ctx)
	if err != nil {
		t.Fatalf("LeagueDirectory: %v", err)
	}
	sort.Strings(leagues)
	if len(leagues) != 3 || leagues[0] != "lg-static" || leagues[1] != "lg1" || leagues[2] != "lg2" {
		t.Fatalf("league directory = %v", leagues)
	}
}
