// Package kvstore implements the domain repositories on the shared
// key-value store, going through the codec for every record read so legacy
// shapes never leak past this layer.
package kvstore

// Key layout. These strings are an internal contract with the store; the
// legacy keys are read (and retired) by reconciliation, never written.
const (
	teamKeyPrefix     = "team:"
	teamKeyPattern    = "team:*"
	rosterKeySuffix   = ":roster"
	paymentsKeySuffix = ":payments"

	membershipsKeyPrefix = "user:"
	membershipsKeySuffix = ":memberships"
	userRosterKeyInfix   = ":roster:"

	leagueKeyPrefix       = "league:"
	leagueTeamsKeySuffix  = ":teams"
	legacyTeamListSuffix  = ":teamlist"
	legacyTeamCardsSuffix = ":teamcards"
	adminIndexKeyPrefix   = "admin:"
	adminIndexKeySuffix   = ":leagues"
	teamDirectoryKey      = "directory:teams"
	leagueDirectoryKey    = "directory:leagues"
	inviteTokenKeyPrefix  = "invite:token:"
	inviteCodeKeyPrefix   = "invite:code:"
	inviteRateKeyPrefix   = "ratelimit:invite:"
)

func teamKey(teamID string) string { return teamKeyPrefix + teamID }

func rosterKey(teamID string) string { return teamKeyPrefix + teamID + rosterKeySuffix }

func paymentsKey(teamID string) string { return teamKeyPrefix + teamID + paymentsKeySuffix }

func membershipsKey(userID string) string { return membershipsKeyPrefix + userID + membershipsKeySuffix }

func userRosterKey(userID, teamID string) string {
	return membershipsKeyPrefix + userID + userRosterKeyInfix + teamID
}

func leagueKey(leagueID string) string { return leagueKeyPrefix + leagueID }

func leagueTeamsKey(leagueID string) string { return leagueKeyPrefix + leagueID + leagueTeamsKeySuffix }

func legacyTeamListKey(leagueID string) string {
	return leagueKeyPrefix + leagueID + legacyTeamListSuffix
}

func legacyTeamCardsKey(leagueID string) string {
	return leagueKeyPrefix + leagueID + legacyTeamCardsSuffix
}

func adminIndexKey(adminUserID string) string {
	return adminIndexKeyPrefix + adminUserID + adminIndexKeySuffix
}

func inviteTokenKey(tokenHash string) string { return inviteTokenKeyPrefix + tokenHash }

func inviteCodeKey(code string) string { return inviteCodeKeyPrefix + code }

func inviteRateKey(callerID string) string { return inviteRateKeyPrefix + callerID }
