package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/teams", handler.ListTeamsByLeague)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, superAdminUserIDs []string) {
	mux.Handle("POST /v1/teams", RequireAuth(verifier, http.HandlerFunc(handler.CreateTeam)))
	mux.Handle("GET /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.GetTeam)))
	mux.Handle("PATCH /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.RenameTeam)))
	mux.Handle("DELETE /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteTeam)))

	mux.Handle("POST /v1/teams/{teamID}/invites/token", RequireAuth(verifier, http.HandlerFunc(handler.CreateInviteToken)))
	mux.Handle("POST /v1/teams/{teamID}/invites/code", RequireAuth(verifier, http.HandlerFunc(handler.CreateInviteCode)))
	mux.Handle("POST /v1/invites/redeem", RequireAuth(verifier, http.HandlerFunc(handler.RedeemInvite)))

	mux.Handle("POST /v1/teams/{teamID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveTeam)))
	mux.Handle("GET /v1/users/me/memberships", RequireAuth(verifier, http.HandlerFunc(handler.ListMyMemberships)))

	mux.Handle("PUT /v1/leagues/{leagueID}/admin",
		RequireAuth(verifier, RequireSuperAdmin(superAdminUserIDs, http.HandlerFunc(handler.AssignLeagueAdmin))))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
	mux.Handle("POST /v1/internal/jobs/rebuild-directories", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRebuildDirectoriesJob)))
}
