package httpapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/mvickers/leaguedesk/internal/usecase"
)

func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileJob")
	defer span.End()

	// Body is optional: an empty request reconciles every known league.
	var req reconcileJobRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := decodeStrict(bytes.NewReader(body), &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.reconcileService.ReconcileLeagueTeamSets(ctx, usecase.ReconcileInput{
		LeagueIDs:  req.LeagueIDs,
		DryRun:     req.DryRun,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "reconcile job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRebuildDirectoriesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRebuildDirectoriesJob")
	defer span.End()

	teamCount, err := h.reconcileService.RebuildTeamDirectory(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "rebuild team directory failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	leagueCount, err := h.reconcileService.RebuildLeagueDirectory(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "rebuild league directory failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rebuildDirectoriesResultDTO{
		TeamCount:   teamCount,
		LeagueCount: leagueCount,
	})
}

type reconcileJobRequest struct {
	LeagueIDs  []string `json:"league_ids" validate:"omitempty,dive,required"`
	DryRun     bool     `json:"dry_run"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,min=1,max=16"`
}

type rebuildDirectoriesResultDTO struct {
	TeamCount   int `json:"team_count"`
	LeagueCount int `json:"league_count"`
}
