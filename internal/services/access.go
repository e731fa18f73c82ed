package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "worklog/internal/errors"
	"worklog/internal/policy"
	"worklog/internal/repository"
)

// authorize returns ErrForbidden unless actor may perform op on ownerID's data.
func authorize(ctx context.Context, dir repository.DirectoryRepository, actor Actor, op policy.Operation, ownerID string) error {
	allowed, err := policy.Decide(actor.Role, actor.ID, op, ownerID, func() (bool, error) {
		return dir.IsTeamMember(ctx, ownerID, actor.ID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// visibleOwners resolves the set of employees whose data a list query may
// return. scoped=false means no restriction.
func visibleOwners(ctx context.Context, dir repository.DirectoryRepository, actor Actor, op policy.Operation) (scoped bool, owners []string, err error) {
	switch policy.ScopeFor(actor.Role, op) {
	case policy.ScopeAny:
		return false, nil, nil
	case policy.ScopeOwn:
		return true, []string{actor.ID}, nil
	case policy.ScopeTeam:
		members, err := dir.TeamMemberIDs(ctx, actor.ID)
		if err != nil {
			return false, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return true, append(members, actor.ID), nil
	}
	return false, nil, apperrors.ErrForbidden
}

// appError passes AppErrors through and wraps everything else as internal.
func appError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// notFound maps gorm.ErrRecordNotFound to sentinel and anything else to internal.
func notFound(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func invalid(msg string) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, msg)
}
