package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/mvickers/leaguedesk/internal/domain/directory"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

const (
	defaultReconcileWorkers = 4
	maxReconcileWorkers     = 16
)

type ReconcileInput struct {
	// LeagueIDs narrows the run; empty means every league the global
	// directory knows about.
	LeagueIDs []string
	// DryRun computes the union and reports counts without writing.
	DryRun     bool
	MaxWorkers int
}

type ReconcileResult struct {
	LeagueCount int                  `json:"league_count"`
	DryRun      bool                 `json:"dry_run"`
	WorkerCount int                  `json:"worker_count"`
	Rows        []ReconcileLeagueRow `json:"rows"`
}

type ReconcileLeagueRow struct {
	LeagueID string `json:"league_id"`
	Before   int    `json:"before"`
	After    int    `json:"after"`
	Error    string `json:"error,omitempty"`
}

// ReconcileService rebuilds directory indices by unioning every source that
// might hold partial truth. Union-only merges mean concurrent or repeated
// runs converge instead of diverging, and no id any source believed in is
// ever dropped.
type ReconcileService struct {
	teamRepo      team.Repository
	directoryRepo directory.Repository
	// staticLeagueIDs seeds the league directory rebuild alongside the ids
	// discovered from team records.
	staticLeagueIDs []string
	logger          *logging.Logger
}

func NewReconcileService(
	teamRepo team.Repository,
	directoryRepo directory.Repository,
	staticLeagueIDs []string,
	logger *logging.Logger,
) *ReconcileService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReconcileService{
		teamRepo:        teamRepo,
		directoryRepo:   directoryRepo,
		staticLeagueIDs: staticLeagueIDs,
		logger:          logger,
	}
}

// ReconcileLeagueTeamSets unions each league's canonical team set with its
// legacy flat list and legacy card documents, overwrites the canonical set
// with the union, and retires the legacy list. Idempotent: a second run
// with no intervening writes is a no-op with identical counts.
func (s *ReconcileService) ReconcileLeagueTeamSets(ctx context.Context, input ReconcileInput) (ReconcileResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.ReconcileLeagueTeamSets")
	defer span.End()

	leagueIDs := input.LeagueIDs
	if len(leagueIDs) == 0 {
		discovered, err := s.directoryRepo.LeagueDirectory(ctx)
		if err != nil {
			return ReconcileResult{}, fmt.Errorf("load league directory: %w", err)
		}
		leagueIDs = discovered
	}

	workerCount := normalizeWorkerCount(input.MaxWorkers, len(leagueIDs))
	result := ReconcileResult{
		LeagueCount: len(leagueIDs),
		DryRun:      input.DryRun,
		WorkerCount: workerCount,
		Rows:        make([]ReconcileLeagueRow, 0, len(leagueIDs)),
	}
	if len(leagueIDs) == 0 {
		return result, nil
	}

	rows := make(chan ReconcileLeagueRow, len(leagueIDs))

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, leagueID := range leagueIDs {
		leagueID := leagueID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			rows <- s.reconcileLeague(ctx, leagueID, input.DryRun)
		}); err != nil {
			workers.Done()
			return ReconcileResult{}, fmt.Errorf("submit league to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Rows = append(result.Rows, row)
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].LeagueID < result.Rows[j].LeagueID
	})

	return result, nil
}

func (s *ReconcileService) reconcileLeague(ctx context.Context, leagueID string, dryRun bool) ReconcileLeagueRow {
	row := ReconcileLeagueRow{LeagueID: leagueID}

	sources, err := s.directoryRepo.LeagueTeamSources(ctx, leagueID)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.Before = len(sources.Canonical)

	union := unionIDs(sources.Canonical, sources.LegacyList, sources.CardIDs)
	row.After = len(union)

	if dryRun {
		return row
	}

	if err := s.directoryRepo.ReplaceLeagueTeamSet(ctx, leagueID, union); err != nil {
		row.Error = err.Error()
		return row
	}

	if row.After != row.Before {
		s.logger.InfoContext(ctx, "league team set reconciled",
			"league_id", leagueID, "before", row.Before, "after", row.After)
	}
	return row
}

// RebuildTeamDirectory rebuilds the global team directory from the team
// records that actually exist, unioned with the directory's current
// contents so a team whose record read failed is not dropped.
func (s *ReconcileService) RebuildTeamDirectory(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.RebuildTeamDirectory")
	defer span.End()

	fromRecords, err := s.teamRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list team record ids: %w", err)
	}
	current, err := s.directoryRepo.TeamDirectory(ctx)
	if err != nil {
		return 0, fmt.Errorf("load team directory: %w", err)
	}

	union := unionIDs(current, fromRecords)
	if err := s.directoryRepo.ReplaceTeamDirectory(ctx, union); err != nil {
		return 0, fmt.Errorf("replace team directory: %w", err)
	}
	return len(union), nil
}

// RebuildLeagueDirectory unions the statically configured league list with
// every league id actually referenced by a team record.
func (s *ReconcileService) RebuildLeagueDirectory(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconcileService.RebuildLeagueDirectory")
	defer span.End()

	teamIDs, err := s.teamRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list team record ids: %w", err)
	}

	referenced := make([]string, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		t, ok, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return 0, fmt.Errorf("load team %s: %w", teamID, err)
		}
		if ok && t.LeagueID != "" {
			referenced = append(referenced, t.LeagueID)
		}
	}

	current, err := s.directoryRepo.LeagueDirectory(ctx)
	if err != nil {
		return 0, fmt.Errorf("load league directory: %w", err)
	}

	union := unionIDs(s.staticLeagueIDs, current, referenced)
	if err := s.directoryRepo.ReplaceLeagueDirectory(ctx, union); err != nil {
		return 0, fmt.Errorf("replace league directory: %w", err)
	}
	return len(union), nil
}

func unionIDs(sources ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, source := range sources {
		for _, id := range source {
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func normalizeWorkerCount(requested, tasks int) int {
	count := requested
	if count < 1 {
		count = defaultReconcileWorkers
	}
	if count > maxReconcileWorkers {
		count = maxReconcileWorkers
	}
	if tasks > 0 && count > tasks {
		count = tasks
	}
	if count < 1 {
		count = 1
	}
	return count
}
