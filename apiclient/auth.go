package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
	"github.com/tdhoang/evdealer-client/utils/logger"
	validatorx "github.com/tdhoang/evdealer-client/utils/validator"
	"go.uber.org/zap"
)

// Login authenticates against the dealer backend and persists the token
// pair and user profile to the store.
func (c *Client) Login(ctx context.Context, creds *model.Credentials) (*model.User, error) {
	if err := validatorx.ValidateStruct(creds); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
	}

	body, err := c.Do(ctx, http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}

	var res model.LoginResult
	var env model.Envelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Data != nil {
		err = json.Unmarshal(env.Data, &res)
	} else {
		err = json.Unmarshal(body, &res)
	}
	if err != nil || res.Token == "" {
		logger.Error("[Login] malformed login payload")
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}

	if err := c.store.Set(KeyToken, res.Token); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	if err := c.store.Set(KeyRefreshToken, res.RefreshToken); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	userJSON, _ := json.Marshal(res.User)
	if err := c.store.Set(KeyUser, string(userJSON)); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}

	logger.Info("[Login] signed in", zap.Uint64("user_id", res.User.ID), zap.String("role", string(res.User.Role)))
	return &res.User, nil
}

// Logout drops all stored credentials.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// CurrentUser returns the stored user profile, or an unauthorized error when
// no session exists.
func (c *Client) CurrentUser() (*model.User, error) {
	raw, err := c.store.Get(KeyUser)
	if err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	if raw == "" {
		return nil, cerr.SetCustomError(constant.ErrUnauthorized)
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	return &user, nil
}
