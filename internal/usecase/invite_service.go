package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mvickers/leaguedesk/internal/domain/invite"
	"github.com/mvickers/leaguedesk/internal/domain/team"
	"github.com/mvickers/leaguedesk/internal/platform/logging"
)

const (
	// rawTokenBytes makes a 64-hex-char link token; codes are short and
	// human-shareable at 8 hex chars.
	rawTokenBytes = 32
	codeBytes     = 4

	issuanceLimit  = 5
	issuanceWindow = 60 * time.Second
)

type InviteService struct {
	teamRepo   team.Repository
	inviteRepo invite.Repository
	logger     *logging.Logger
	now        func() time.Time
}

func NewInviteService(teamRepo team.Repository, inviteRepo invite.Repository, logger *logging.Logger) *InviteService {
	if logger == nil {
		logger = logging.Default()
	}
	return &InviteService{
		teamRepo:   teamRepo,
		inviteRepo: inviteRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// IssueToken creates a link-style invite for teamID. Only the token's
// SHA-256 hash is stored; the raw token is returned once and never again.
func (s *InviteService) IssueToken(ctx context.Context, teamID, callerID string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InviteService.IssueToken")
	defer span.End()

	if err := s.checkIssuance(ctx, teamID, callerID); err != nil {
		return "", err
	}

	raw := make([]byte, rawTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate invite token: %w", err)
	}
	token := hex.EncodeToString(raw)
	digest := sha256.Sum256([]byte(token))

	inv := invite.Invite{
		TeamID:    teamID,
		CreatedBy: callerID,
		Uses:      0,
		CreatedAt: s.now().UTC(),
	}
	if err := s.inviteRepo.SaveToken(ctx, hex.EncodeToString(digest[:]), inv, invite.TTL); err != nil {
		return "", fmt.Errorf("store invite token: %w", err)
	}

	return token, nil
}

// IssueCode creates a short shareable code invite. The code itself is the
// lookup key; it carries less entropy than a token on purpose.
func (s *InviteService) IssueCode(ctx context.Context, teamID, callerID string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InviteService.IssueCode")
	defer span.End()

	if err := s.checkIssuance(ctx, teamID, callerID); err != nil {
		return "", err
	}

	raw := make([]byte, codeBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate invite code: %w", err)
	}
	code := hex.EncodeToString(raw)

	inv := invite.Invite{
		TeamID:    teamID,
		CreatedBy: callerID,
		Uses:      0,
		CreatedAt: s.now().UTC(),
	}
	if err := s.inviteRepo.SaveCode(ctx, code, inv, invite.TTL); err != nil {
		return "", fmt.Errorf("store invite code: %w", err)
	}

	return code, nil
}

// Redeem resolves a raw token or short code to its team id and consumes the
// invite. The invite is deleted on lookup, before the caller performs the
// join; a failed join does not resurrect it.
func (s *InviteService) Redeem(ctx context.Context, value string) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InviteService.Redeem")
	defer span.End()

	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: invite value is required", ErrInvalidInput)
	}

	digest := sha256.Sum256([]byte(value))
	inv, ok, err := s.inviteRepo.TakeToken(ctx, hex.EncodeToString(digest[:]))
	if err != nil {
		return "", fmt.Errorf("redeem invite token: %w", err)
	}
	if !ok {
		inv, ok, err = s.inviteRepo.TakeCode(ctx, strings.ToLower(value))
		if err != nil {
			return "", fmt.Errorf("redeem invite code: %w", err)
		}
	}
	if !ok || inv.TeamID == "" {
		return "", fmt.Errorf("%w: unknown, expired, or already redeemed", ErrInviteInvalid)
	}

	return inv.TeamID, nil
}

// checkIssuance runs the shared permission, capacity, and rate-limit gates
// against freshly read state.
func (s *InviteService) checkIssuance(ctx context.Context, teamID, callerID string) error {
	teamID = strings.TrimSpace(teamID)
	callerID = strings.TrimSpace(callerID)
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if callerID == "" {
		return fmt.Errorf("%w: caller id is required", ErrInvalidInput)
	}

	t, ok, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load team %s: %w", teamID, err)
	}
	if !ok {
		return fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}
	if t.ManagerUserID != callerID {
		return fmt.Errorf("%w: only the team manager may issue invites", ErrForbidden)
	}

	roster, err := s.teamRepo.GetRoster(ctx, teamID)
	if err != nil {
		return fmt.Errorf("load roster for team %s: %w", teamID, err)
	}
	if len(roster) >= t.RosterLimit {
		return fmt.Errorf("%w: roster already at limit %d", ErrTeamFull, t.RosterLimit)
	}

	count, err := s.inviteRepo.CountIssuance(ctx, callerID, issuanceWindow)
	if err != nil {
		return fmt.Errorf("count invite issuance: %w", err)
	}
	if count > issuanceLimit {
		s.logger.WarnContext(ctx, "invite issuance rate limited", "caller_id", callerID, "count", count)
		return fmt.Errorf("%w: more than %d invites in %s", ErrRateLimited, issuanceLimit, issuanceWindow)
	}

	return nil
}
