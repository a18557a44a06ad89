package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/invite"
	"github.com/mvickers/leaguedesk/internal/domain/membership"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

func TestTeamRepositoryDefaultsOnRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewTeamRepository(kv)

	// A record written before ids and limits were embedded: hash shape,
	// no id field, no roster limit.
	if err := kv.HashSetAll(ctx, "team:t1", map[string]string{
		"name":          "Alpha",
		"managerUserId": "u1",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, ok, err := repo.GetByID(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("GetByID = (%v, %v)", ok, err)
	}
	if got.ID != "t1" {
		t.Fatalf("ID = %q, want defaulted key id", got.ID)
	}
	if got.RosterLimit != team.DefaultRosterLimit {
		t.Fatalf("RosterLimit = %d, want default %d", got.RosterLimit, team.DefaultRosterLimit)
	}
}

func TestTeamRepositoryListIDsSkipsSubRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewTeamRepository(kv)

	for _, tm := range []team.Team{
		{ID: "t1", Name: "A", ManagerUserID: "u1", RosterLimit: 8},
		{ID: "t2", Name: "B", ManagerUserID: "u2", RosterLimit: 8},
	} {
		if err := repo.Save(ctx, tm); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := repo.SaveRoster(ctx, "t1", []team.RosterEntry{{UserID: "u1"}}); err != nil {
		t.Fatalf("SaveRoster: %v", err)
	}
	if err := repo.SavePaymentFlags(ctx, "t1", map[string]bool{"u1": true}); err != nil {
		t.Fatalf("SavePaymentFlags: %v", err)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListIDs = %v, want exactly the two team record ids", ids)
	}
}

func TestTeamRepositoryLegacyPaymentHash(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewTeamRepository(kv)

	// Oldest writers stored the payment map as a plain hash with stringy
	// truth values.
	if err := kv.HashSetAll(ctx, "team:t1:payments", map[string]string{
		"u1": "1",
		"u2": "0",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	flags, err := repo.GetPaymentFlags(ctx, "t1")
	if err != nil {
		t.Fatalf("GetPaymentFlags: %v", err)
	}
	if !flags["u1"] || flags["u2"] {
		t.Fatalf("flags = %v, want u1 paid and u2 unpaid", flags)
	}

	// A save migrates the key to the canonical JSON document.
	if err := repo.SavePaymentFlags(ctx, "t1", flags); err != nil {
		t.Fatalf("SavePaymentFlags: %v", err)
	}
	raw, ok, err := kv.Get(ctx, "team:t1:payments")
	if err != nil || !ok || raw == "" {
		t.Fatalf("payments key after save = (%q, %v, %v), want JSON string", raw, ok, err)
	}
}

func TestLeagueRepositoryAdminIndexLegacyString(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewLeagueRepository(kv)

	// Legacy single-string reverse index.
	if err := kv.Set(ctx, "admin:u1:leagues", "lg-old", 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ids, err := repo.AdminLeagues(ctx, "u1")
	if err != nil {
		t.Fatalf("AdminLeagues: %v", err)
	}
	if len(ids) != 1 || ids[0] != "lg-old" {
		t.Fatalf("AdminLeagues = %v, want [lg-old]", ids)
	}

	// A mutation folds the legacy value in and persists the set shape.
	if err := repo.AddAdminLeague(ctx, "u1", "lg-new"); err != nil {
		t.Fatalf("AddAdminLeague: %v", err)
	}
	members, ok, err := kv.SetMembers(ctx, "admin:u1:leagues")
	if err != nil || !ok {
		t.Fatalf("SetMembers after migration = (%v, %v)", ok, err)
	}
	if len(members) != 2 {
		t.Fatalf("migrated index = %v, want both league ids", members)
	}

	if err := repo.RemoveAdminLeague(ctx, "u1", "lg-old"); err != nil {
		t.Fatalf("RemoveAdminLeague: %v", err)
	}
	ids, err = repo.AdminLeagues(ctx, "u1")
	if err != nil || len(ids) != 1 || ids[0] != "lg-new" {
		t.Fatalf("AdminLeagues after remove = (%v, %v), want [lg-new]", ids, err)
	}
}

func TestMembershipRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewMembershipRepository(kv)

	joined := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for _, m := range []membership.Membership{
		{UserID: "u1", TeamID: "t1", LeagueID: "lg1", TeamName: "Alpha", JoinedAt: joined},
		{UserID: "u1", TeamID: "t2", LeagueID: "lg2", TeamName: "Beta", JoinedAt: joined},
	} {
		if err := repo.Save(ctx, m); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	all, err := repo.ListByUser(ctx, "u1")
	if err != nil || len(all) != 2 {
		t.Fatalf("ListByUser = (%v, %v), want two memberships", all, err)
	}

	got, ok, err := repo.Get(ctx, "u1", "t2")
	if err != nil || !ok || got.TeamName != "Beta" {
		t.Fatalf("Get = (%+v, %v, %v)", got, ok, err)
	}

	if err := repo.Remove(ctx, "u1", "t1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "u1", "t1"); ok {
		t.Fatal("membership still present after Remove")
	}
	// Removing again is a no-op.
	if err := repo.Remove(ctx, "u1", "t1"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestInviteRepositoryTakeIsSingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewInviteRepository(kv)

	inv := invite.Invite{TeamID: "t1", CreatedBy: "u1", CreatedAt: time.Now().UTC()}
	if err := repo.SaveCode(ctx, "abcd1234", inv, invite.TTL); err != nil {
		t.Fatalf("SaveCode: %v", err)
	}

	got, ok, err := repo.TakeCode(ctx, "abcd1234")
	if err != nil || !ok || got.TeamID != "t1" {
		t.Fatalf("TakeCode = (%+v, %v, %v)", got, ok, err)
	}

	if _, ok, _ := repo.TakeCode(ctx, "abcd1234"); ok {
		t.Fatal("second TakeCode succeeded; invites must be consumed on lookup")
	}
}

func TestInviteRepositoryCountIssuanceWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewInviteRepository(kv)

	now := time.Now()
	kv.SetClock(func() time.Time { return now })

	for want := int64(1); want <= 3; want++ {
		n, err := repo.CountIssuance(ctx, "u1", time.Minute)
		if err != nil || n != want {
			t.Fatalf("CountIssuance = (%d, %v), want %d", n, err, want)
		}
	}

	now = now.Add(2 * time.Minute)
	n, err := repo.CountIssuance(ctx, "u1", time.Minute)
	if err != nil || n != 1 {
		t.Fatalf("CountIssuance after window = (%d, %v), want reset to 1", n, err)
	}
}

func TestDirectoryRepositorySourcesAndReplace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := store.NewMemoryKV()
	repo := NewDirectoryRepository(kv)

	if err := kv.AddToSet(ctx, "league:lg1:teams", "a"); err != nil {
		t.Fatalf("seed canonical: %v", err)
	}
	if err := kv.Set(ctx, "league:lg1:teamlist", "b,c", 0); err != nil {
		t.Fatalf("seed legacy list: %v", err)
	}
	if err := kv.Set(ctx, "league:lg1:teamcards", `[{"teamId":"d"},{"id":"e"}]`, 0); err != nil {
		t.Fatalf("seed cards: %v", err)
	}

	sources, err := repo.LeagueTeamSources(ctx, "lg1")
	if err != nil {
		t.Fatalf("LeagueTeamSources: %v", err)
	}
	if len(sources.Canonical) != 1 || len(sources.LegacyList) != 2 || len(sources.CardIDs) != 2 {
		t.Fatalf("sources = %+v", sources)
	}

	if err := repo.ReplaceLeagueTeamSet(ctx, "lg1", []string{"a", "b", "c", "d", "e"}); err != nil {
		t.Fatalf("ReplaceLeagueTeamSet: %v", err)
	}

	ids, err := repo.LeagueTeamSet(ctx, "lg1")
	if err != nil || len(ids) != 5 {
		t.Fatalf("LeagueTeamSet = (%v, %v)", ids, err)
	}
	// The legacy flat list is retired by the replace.
	if _, ok, _ := kv.Get(ctx, "league:lg1:teamlist"); ok {
		t.Fatal("legacy team list survived ReplaceLeagueTeamSet")
	}
}
