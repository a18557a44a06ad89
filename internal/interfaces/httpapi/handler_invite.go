package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mvickers/leaguedesk/internal/usecase"
)

func (h *Handler) CreateInviteToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateInviteToken")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	token, err := h.inviteService.IssueToken(ctx, teamID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "issue invite token failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	// The raw token is returned exactly once; only its digest is stored.
	writeSuccess(ctx, w, http.StatusCreated, inviteIssuedDTO{
		TeamID: teamID,
		Invite: token,
		Kind:   "token",
	})
}

func (h *Handler) CreateInviteCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateInviteCode")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	code, err := h.inviteService.IssueCode(ctx, teamID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "issue invite code failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, inviteIssuedDTO{
		TeamID: teamID,
		Invite: code,
		Kind:   "code",
	})
}

func (h *Handler) RedeemInvite(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RedeemInvite")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req redeemInviteRequest
	if err := decodeStrict(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	teamID, err := h.inviteService.Redeem(ctx, req.Invite)
	if err != nil {
		h.logger.WarnContext(ctx, "redeem invite failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	joined, err := h.membershipService.Join(ctx, usecase.JoinInput{
		UserID:      principal.UserID,
		DisplayName: principal.DisplayName,
		TeamID:      teamID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join after redeem failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(ctx, joined))
}

type redeemInviteRequest struct {
	Invite string `json:"invite" validate:"required,max=128"`
}

type inviteIssuedDTO struct {
	TeamID string `json:"team_id"`
	Invite string `json:"invite"`
	Kind   string `json:"kind"`
}
