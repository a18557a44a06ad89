package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/usecase"
)

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req createTeamRequest
	if err := decodeStrict(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.teamService.Create(ctx, usecase.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
		LeagueID:    req.LeagueID,
		ManagerID:   principal.UserID,
		ManagerName: principal.DisplayName,
		RosterLimit: req.RosterLimit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create team failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(ctx, created))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	item, roster, err := h.teamService.Get(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	entries := make([]rosterEntryDTO, 0, len(roster))
	for _, entry := range roster {
		entries = append(entries, rosterEntryToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, teamDetailDTO{
		Team:   teamToDTO(ctx, item),
		Roster: entries,
	})
}

func (h *Handler) RenameTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RenameTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	var req renameTeamRequest
	if err := decodeStrict(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.teamService.Rename(ctx, usecase.RenameTeamInput{
		TeamID:   teamID,
		CallerID: principal.UserID,
		Name:     req.Name,
		LeagueID: req.LeagueID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "rename team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(ctx, updated))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.teamService.Delete(ctx, teamID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "delete team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"deleted": teamID})
}

type createTeamRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	LeagueID    string `json:"league_id" validate:"required"`
	RosterLimit int    `json:"roster_limit" validate:"omitempty,min=1,max=64"`
}

type renameTeamRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	LeagueID string `json:"league_id"`
}

type teamDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	LeagueID      string `json:"league_id"`
	ManagerUserID string `json:"manager_user_id"`
	RosterLimit   int    `json:"roster_limit"`
	CreatedAtUTC  string `json:"created_at_utc"`
	UpdatedAtUTC  string `json:"updated_at_utc"`
}

type teamDetailDTO struct {
	Team   teamDTO          `json:"team"`
	Roster []rosterEntryDTO `json:"roster"`
}

type rosterEntryDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsManager   bool   `json:"is_manager"`
	JoinedAtUTC string `json:"joined_at_utc"`
}

func teamToDTO(ctx context.Context, v team.Team) teamDTO {
	ctx, span := startSpan(ctx, "httpapi.teamToDTO")
	defer span.End()

	return teamDTO{
		ID:            v.ID,
		Name:          v.Name,
		Description:   v.Description,
		LeagueID:      v.LeagueID,
		ManagerUserID: v.ManagerUserID,
		RosterLimit:   v.RosterLimit,
		CreatedAtUTC:  v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:  v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func rosterEntryToDTO(ctx context.Context, v team.RosterEntry) rosterEntryDTO {
	ctx, span := startSpan(ctx, "httpapi.rosterEntryToDTO")
	defer span.End()

	return rosterEntryDTO{
		UserID:      v.UserID,
		DisplayName: v.DisplayName,
		IsManager:   v.IsManager,
		JoinedAtUTC: v.JoinedAt.UTC().Format(time.RFC3339),
	}
}
