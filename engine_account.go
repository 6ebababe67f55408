package goAccount

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/MrEthical07/goAccount/password"
	"github.com/MrEthical07/goAccount/user"
)

// Register creates an account and returns its id. EMAIL accounts need a
// password that satisfies the hashing policy; SOCIAL accounts may omit it.
//
//	Performance: 1 count query, 1 insert, 1 argon2id hash.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	if e == nil || e.directory == nil {
		return 0, ErrEngineNotReady
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := e.validator.Struct(req); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	count, err := e.directory.CountByEmailAndType(ctx, req.Email, req.Type)
	if err != nil {
		return 0, e.directoryError(err)
	}
	if count > 0 {
		e.metricInc(MetricAccountCreationDuplicate)
		e.emitAudit(ctx, auditEventAccountCreationDuplicate, false, "", req.Email, ErrAccountExists, nil)
		return 0, ErrAccountExists
	}

	hash := ""
	if req.Password != "" {
		hash, err = e.hashPassword(req.Password)
		if err != nil {
			return 0, err
		}
	}

	id, err := e.directory.Save(ctx, user.Draft{
		Email:         req.Email,
		PasswordHash:  hash,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Type:          req.Type,
		SocialID:      req.SocialID,
		Address:       req.Address,
		AddressPostNo: req.AddressPostNo,
		TempFlag:      req.Temp,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			e.metricInc(MetricAccountCreationDuplicate)
			return 0, ErrAccountExists
		}
		return 0, e.directoryError(err)
	}

	e.metricInc(MetricAccountCreationSuccess)
	e.emitAudit(ctx, auditEventAccountCreationSuccess, true, formatUserID(id), req.Email, nil, func() map[string]string {
		return map[string]string{"type": req.Type}
	})
	return id, nil
}

// GetUser returns the user with the given id or ErrUserNotFound.
func (e *Engine) GetUser(ctx context.Context, id int64) (*user.User, error) {
	if e == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}
	u, err := e.directory.FindByID(ctx, id)
	if err != nil {
		return nil, e.directoryError(err)
	}
	return u, nil
}

// ListUsers returns a 1-based page of accounts, newest first. Sizes outside
// (0, Paging.MaxPageSize] fall back to the default or the maximum. Pages
// whose offset would not fit an int32 are rejected with ErrInvalidRequest.
func (e *Engine) ListUsers(ctx context.Context, page, size int) (*UserPage, error) {
	if e == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = e.config.Paging.DefaultPageSize
	case size > e.config.Paging.MaxPageSize:
		size = e.config.Paging.MaxPageSize
	}

	if page-1 > math.MaxInt32/size {
		return nil, fmt.Errorf("%w: page %d out of range", ErrInvalidRequest, page)
	}

	items, total, err := e.directory.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, e.directoryError(err)
	}
	if items == nil {
		items = []user.User{}
	}

	pages := (total + int64(size) - 1) / int64(size)
	if pages == 0 {
		pages = 1
	}
	return &UserPage{
		Items:      items,
		TotalCount: total,
		TotalPages: pages,
		Page:       page,
		Size:       size,
	}, nil
}

// CountByEmailAndType backs the sign-up "email taken" check.
func (e *Engine) CountByEmailAndType(ctx context.Context, email, accountType string) (int64, error) {
	if e == nil || e.directory == nil {
		return 0, ErrEngineNotReady
	}
	n, err := e.directory.CountByEmailAndType(ctx, strings.TrimSpace(email), accountType)
	if err != nil {
		return 0, e.directoryError(err)
	}
	return n, nil
}

// UpdatePassword replaces the password of account id. When the account
// already has a password, CurrentPassword must match it.
func (e *Engine) UpdatePassword(ctx context.Context, id int64, req UpdatePasswordRequest) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if err := e.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	u, err := e.directory.FindByID(ctx, id)
	if err != nil {
		return e.directoryError(err)
	}
	if u.PasswordHash != "" {
		ok, err := e.passwords.Verify(req.CurrentPassword, u.PasswordHash)
		if err != nil || !ok {
			e.emitAudit(ctx, auditEventPasswordChangeFailure, false, formatUserID(id), u.Email, ErrInvalidCredentials, nil)
			return ErrInvalidCredentials
		}
	}

	hash, err := e.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := e.directory.UpdatePassword(ctx, id, hash); err != nil {
		return e.directoryError(err)
	}

	e.metricInc(MetricPasswordChange)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, formatUserID(id), u.Email, nil, nil)
	return nil
}

// UpdateAddress replaces the postal address of the user.
func (e *Engine) UpdateAddress(ctx context.Context, id int64, req UpdateAddressRequest) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if err := e.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := e.directory.UpdateAddress(ctx, id, req.Address, req.AddressPostNo); err != nil {
		return e.directoryError(err)
	}
	e.profileUpdated(ctx, id, "address")
	return nil
}

// UpdateName replaces the first and last name of the user.
func (e *Engine) UpdateName(ctx context.Context, id int64, req UpdateNameRequest) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if err := e.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := e.directory.UpdateName(ctx, id, req.FirstName, req.LastName); err != nil {
		return e.directoryError(err)
	}
	e.profileUpdated(ctx, id, "name")
	return nil
}

// UpdateDropFlag marks the account dropped (or restores it). Dropped accounts
// cannot log in; credentials already issued stay valid until they expire.
func (e *Engine) UpdateDropFlag(ctx context.Context, id int64, drop bool) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if err := e.directory.UpdateDropFlag(ctx, id, drop); err != nil {
		return e.directoryError(err)
	}
	if drop {
		e.metricInc(MetricAccountDropped)
	}
	e.emitAudit(ctx, auditEventAccountDropFlag, true, formatUserID(id), "", nil, func() map[string]string {
		return map[string]string{"drop": fmt.Sprint(drop)}
	})
	return nil
}

// UpdateTempFlag marks the account temporary or permanent.
func (e *Engine) UpdateTempFlag(ctx context.Context, id int64, temp bool) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if err := e.directory.UpdateTempFlag(ctx, id, temp); err != nil {
		return e.directoryError(err)
	}
	e.profileUpdated(ctx, id, "temp")
	return nil
}

func (e *Engine) profileUpdated(ctx context.Context, id int64, field string) {
	e.metricInc(MetricProfileUpdate)
	e.emitAudit(ctx, auditEventProfileUpdate, true, formatUserID(id), "", nil, func() map[string]string {
		return map[string]string{"field": field}
	})
}

func (e *Engine) hashPassword(plain string) (string, error) {
	hash, err := e.passwords.Hash(plain)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooShort) || errors.Is(err, password.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return "", err
	}
	return hash, nil
}

func (e *Engine) directoryError(err error) error {
	if errors.Is(err, user.ErrNotFound) {
		return ErrUserNotFound
	}
	e.logger.Warn().Err(err).Msg("user directory failure")
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
