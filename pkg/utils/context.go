package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	BranchIDKey contextKey = "branch_id"
)

// GetUserIDFromContext returns the authenticated user set by the identity middleware.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userIDVal := ctx.Value(UserIDKey)
	if userIDVal == nil {
		return uuid.Nil, false
	}

	userIDStr, ok := userIDVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return userID, true
}

// GetBranchIDFromContext returns the acting branch for branch-scoped routes.
func GetBranchIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	branchIDVal := ctx.Value(BranchIDKey)
	if branchIDVal == nil {
		return uuid.Nil, false
	}

	branchIDStr, ok := branchIDVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	branchID, err := uuid.Parse(branchIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return branchID, true
}

func SetUserContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID.String())
}

func SetBranchContext(ctx context.Context, branchID uuid.UUID) context.Context {
	return context.WithValue(ctx, BranchIDKey, branchID.String())
}
