package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/membership"
	"github.com/mvickers/leaguedesk/internal/usecase"
)

func (h *Handler) ListMyMemberships(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyMemberships")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	items, err := h.membershipService.ListForUser(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list memberships failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]membershipDTO, 0, len(items))
	for _, item := range items {
		out = append(out, membershipToDTO(ctx, item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) LeaveTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.membershipService.Leave(ctx, principal.UserID, teamID); err != nil {
		h.logger.WarnContext(ctx, "leave team failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"left": teamID})
}

type membershipDTO struct {
	UserID      string `json:"user_id"`
	TeamID      string `json:"team_id"`
	LeagueID    string `json:"league_id"`
	IsManager   bool   `json:"is_manager"`
	TeamName    string `json:"team_name"`
	LeagueName  string `json:"league_name"`
	JoinedAtUTC string `json:"joined_at_utc"`
}

func membershipToDTO(ctx context.Context, v membership.Membership) membershipDTO {
	ctx, span := startSpan(ctx, "httpapi.membershipToDTO")
	defer span.End()

	return membershipDTO{
		UserID:      v.UserID,
		TeamID:      v.TeamID,
		LeagueID:    v.LeagueID,
		IsManager:   v.IsManager,
		TeamName:    v.TeamName,
		LeagueName:  v.LeagueName,
		JoinedAtUTC: v.JoinedAt.UTC().Format(time.RFC3339),
	}
}
