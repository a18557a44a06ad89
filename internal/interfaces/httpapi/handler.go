package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/mvickers/leaguedesk/internal/platform/logging"
	"github.com/mvickers/leaguedesk/internal/usecase"
)

type Handler struct {
	teamService       *usecase.TeamService
	membershipService *usecase.MembershipService
	inviteService     *usecase.InviteService
	reconcileService  *usecase.ReconcileService
	adminService      *usecase.AdminService
	directoryService  *usecase.DirectoryService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	membershipService *usecase.MembershipService,
	inviteService *usecase.InviteService,
	reconcileService *usecase.ReconcileService,
	adminService *usecase.AdminService,
	directoryService *usecase.DirectoryService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		teamService:       teamService,
		membershipService: membershipService,
		inviteService:     inviteService,
		reconcileService:  reconcileService,
		adminService:      adminService,
		directoryService:  directoryService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeStrict(body io.Reader, out any) error {
	decoder := jsoniter.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
