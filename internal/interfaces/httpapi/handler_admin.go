package httpapi

import (
	"net/http"
	"strings"

	"github.com/mvickers/leaguedesk/internal/usecase"
)

func (h *Handler) AssignLeagueAdmin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignLeagueAdmin")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	var req assignAdminRequest
	if err := decodeStrict(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.adminService.Assign(ctx, usecase.AssignAdminInput{
		LeagueID:    leagueID,
		AdminUserID: req.AdminUserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "assign league admin failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type assignAdminRequest struct {
	// AdminUserID empty clears the assignment.
	AdminUserID string `json:"admin_user_id" validate:"max=64"`
}
