package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/versetype/versetype-api/internal/core"
	domainauth "github.com/versetype/versetype-api/internal/domain/auth"
	"github.com/versetype/versetype-api/internal/domain/model"
	apperrors "github.com/versetype/versetype-api/internal/errors"
)

// AuthStateResolver resolves a session token to its auth state.
type AuthStateResolver interface {
	GetAuthState(ctx context.Context, token string) (domainauth.AuthState, error)
}

// TypingService records typing results for the session's user.
type TypingService struct {
	repo core.TypingResultRepository
	auth AuthStateResolver
}

// NewTypingService constructs a new TypingService.
func NewTypingService(repo core.TypingResultRepository, auth AuthStateResolver) (*TypingService, error) {
	if repo == nil || auth == nil {
		return nil, errors.New("typing result repository and auth resolver are required")
	}
	return &TypingService{repo: repo, auth: auth}, nil
}

// Save stores a result for the authenticated user.
func (s *TypingService) Save(ctx context.Context, token string, req model.SaveTypingResultRequest) (*model.TypingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	state, err := s.auth.GetAuthState(ctx, token)
	if err != nil {
		return nil, err
	}
	if !state.IsAuthenticated() {
		return nil, apperrors.Unauthorized("You must be logged in to save results")
	}

	res, err := s.repo.Create(ctx, &model.TypingResult{
		UserID:      state.User.ID,
		VerseID:     req.VerseID,
		Translation: req.Translation,
		Reference:   req.Reference,
		WPM:         req.WPM,
		Accuracy:    req.Accuracy,
	})
	if err != nil {
		return nil, fmt.Errorf("save typing result: %w", err)
	}
	return res, nil
}

// History returns the user's latest results, newest first.
// An unauthenticated session gets an empty list.
func (s *TypingService) History(ctx context.Context, token string) ([]*model.TypingResult, error) {
	state, err := s.auth.GetAuthState(ctx, token)
	if err != nil {
		return nil, err
	}
	if !state.IsAuthenticated() {
		return []*model.TypingResult{}, nil
	}
	out, err := s.repo.ListRecentByUser(ctx, state.User.ID, model.TypingHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("typing history: %w", err)
	}
	if out == nil {
		out = []*model.TypingResult{}
	}
	return out, nil
}
