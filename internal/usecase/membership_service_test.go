package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mvickers/leaguedesk/internal/domain/league"
	"github.com/mvickers/leaguedesk/internal/domain/membership"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/infrastructure/repository/kvstore"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

type membershipFixture struct {
	kv             *store.MemoryKV
	teamRepo       *kvstore.TeamRepository
	membershipRepo *kvstore.MembershipRepository
	leagueRepo     *kvstore.LeagueRepository
	svc            *MembershipService
}

func newMembershipFixture(t *testing.T) membershipFixture {
	t.Helper()

	kv := store.NewMemoryKV()
	f := membershipFixture{
		kv:             kv,
		teamRepo:       kvstore.NewTeamRepository(kv),
		membershipRepo: kvstore.NewMembershipRepository(kv),
		leagueRepo:     kvstore.NewLeagueRepository(kv),
	}
	f.svc = NewMembershipService(f.teamRepo, f.membershipRepo, f.leagueRepo, logging.NewNop())
	return f
}

func (f membershipFixture) seedLeague(t *testing.T, l league.League) {
	t.Helper()
	if err := f.leagueRepo.Save(context.Background(), l); err != nil {
		t.Fatalf("seed league %s: %v", l.ID, err)
	}
}

func (f membershipFixture) seedTeam(t *testing.T, tm team.Team) {
	t.Helper()
	if tm.RosterLimit == 0 {
		tm.RosterLimit = team.DefaultRosterLimit
	}
	if err := f.teamRepo.Save(context.Background(), tm); err != nil {
		t.Fatalf("seed team %s: %v", tm.ID, err)
	}
}

func TestJoinHappyPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedLeague(t, league.League{ID: "lg1", Name: "Sunday League"})
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", LeagueID: "lg1", ManagerUserID: "u-mgr"})

	m, err := f.svc.Join(ctx, JoinInput{UserID: "u2", DisplayName: "Pat", TeamID: "t1"})
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if m.TeamName != "Alpha" || m.LeagueName != "Sunday League" || m.IsManager {
		t.Fatalf("membership = %+v", m)
	}

	roster, err := f.teamRepo.GetRoster(ctx, "t1")
	if err != nil || len(roster) != 1 || roster[0].UserID != "u2" {
		t.Fatalf("roster = (%v, %v)", roster, err)
	}

	flags, err := f.teamRepo.GetPaymentFlags(ctx, "t1")
	if err != nil {
		t.Fatalf("GetPaymentFlags: %v", err)
	}
	if paid, ok := flags["u2"]; !ok || paid {
		t.Fatalf("payment flags = %v, want u2 present and unpaid", flags)
	}
}

func TestJoinRejectsSecondTeamInSameLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedLeague(t, league.League{ID: "lg1", Name: "Sunday League"})
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", LeagueID: "lg1", ManagerUserID: "u-mgr"})
	f.seedTeam(t, team.Team{ID: "t2", Name: "Beta", LeagueID: "lg1", ManagerUserID: "u-mgr2"})

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t1"}); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t2"}); !errors.Is(err, ErrAlreadyOnTeamInLeague) {
		t.Fatalf("Join second team in league = %v, want ErrAlreadyOnTeamInLeague", err)
	}
}

func TestJoinSameTeamTwiceIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", ManagerUserID: "u-mgr", RosterLimit: 1})

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t1"}); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	// Full roster, but re-joining the sole member is a refresh, not a
	// capacity violation.
	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t1"}); err != nil {
		t.Fatalf("re-Join: %v", err)
	}

	roster, err := f.teamRepo.GetRoster(ctx, "t1")
	if err != nil || len(roster) != 1 {
		t.Fatalf("roster = (%v, %v), want single entry", roster, err)
	}
}

func TestJoinRejectsFullRoster(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", ManagerUserID: "u-mgr", RosterLimit: 1})

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t1"}); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u3", TeamID: "t1"}); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("Join past limit = %v, want ErrTeamFull", err)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", ManagerUserID: "u-mgr"})

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: "t1"}); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if err := f.svc.Leave(ctx, "u2", "t1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := f.svc.Leave(ctx, "u2", "t1"); err != nil {
		t.Fatalf("second Leave: %v", err)
	}

	roster, err := f.teamRepo.GetRoster(ctx, "t1")
	if err != nil || len(roster) != 0 {
		t.Fatalf("roster after leave = (%v, %v), want empty", roster, err)
	}
	if _, ok, _ := f.membershipRepo.Get(ctx, "u2", "t1"); ok {
		t.Fatal("membership survived Leave")
	}
}

// capacityAfterInvite walks the full path of the capacity invariant: a code
// redemption admits the second member, and the third join attempt fails no
// matter how it arrives.
func TestCapacityAfterInviteRedemption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", ManagerUserID: "u1", RosterLimit: 2})

	inviteSvc := NewInviteService(f.teamRepo, kvstore.NewInviteRepository(f.kv), logging.NewNop())

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u1", TeamID: "t1"}); err != nil {
		t.Fatalf("manager join: %v", err)
	}

	code, err := inviteSvc.IssueCode(ctx, "t1", "u1")
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	teamID, err := inviteSvc.Redeem(ctx, code)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u2", TeamID: teamID}); err != nil {
		t.Fatalf("redeemed join: %v", err)
	}

	if _, err := f.svc.Join(ctx, JoinInput{UserID: "u3", TeamID: "t1"}); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("third join = %v, want ErrTeamFull", err)
	}
	// And the gate holds at issuance time too.
	if _, err := inviteSvc.IssueCode(ctx, "t1", "u1"); !errors.Is(err, ErrTeamFull) {
		t.Fatalf("IssueCode with full roster = %v, want ErrTeamFull", err)
	}
}

// flakySaveRepo fails membership saves for one user until healed.
type flakySaveRepo struct {
	membership.Repository
	failUserID string
	healed     bool
}

func (r *flakySaveRepo) Save(ctx context.Context, m membership.Membership) error {
	if !r.healed && m.UserID == r.failUserID {
		return errors.New("transient store failure")
	}
	return r.Repository.Save(ctx, m)
}

func TestPropagateTeamRenameConvergesAfterPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newMembershipFixture(t)
	f.seedTeam(t, team.Team{ID: "t1", Name: "Alpha", ManagerUserID: "u1"})

	flaky := &flakySaveRepo{Repository: f.membershipRepo, failUserID: "u2"}
	svc := NewMembershipService(f.teamRepo, flaky, f.leagueRepo, logging.NewNop())

	for _, userID := range []string{"u1", "u2", "u3"} {
		if _, err := f.svc.Join(ctx, JoinInput{UserID: userID, TeamID: "t1"}); err != nil {
			t.Fatalf("join %s: %v", userID, err)
		}
	}

	// First pass: u2's save fails, the others are updated, and the error
	// reports the partial fan-out.
	if err := svc.PropagateTeamRename(ctx, "t1", "Alpha Prime", ""); err == nil {
		t.Fatal("PropagateTeamRename = nil error, want partial failure")
	}
	m1, _, _ := f.membershipRepo.Get(ctx, "u1", "t1")
	m2, _, _ := f.membershipRepo.Get(ctx, "u2", "t1")
	if m1.TeamName != "Alpha Prime" || m2.TeamName == "Alpha Prime" {
		t.Fatalf("after partial pass: u1=%q u2=%q", m1.TeamName, m2.TeamName)
	}

	// Re-run with the store healed: only the straggler is written, and the
	// pass converges.
	flaky.healed = true
	if err := svc.PropagateTeamRename(ctx, "t1", "Alpha Prime", ""); err != nil {
		t.Fatalf("second PropagateTeamRename: %v", err)
	}
	m2, _, _ = f.membershipRepo.Get(ctx, "u2", "t1")
	if m2.TeamName != "Alpha Prime" {
		t.Fatalf("u2 team name = %q, want converged", m2.TeamName)
	}
}
