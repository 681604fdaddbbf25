package apiclient

import (
	"context"
	"net/http"

	"github.com/jrsteele09/kogase-admin/credentials"
	interrors "github.com/jrsteele09/kogase-admin/internal/errors"
	"golang.org/x/oauth2"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// tokenResponse is the part of the backend's auth response the refresh path
// needs.
type tokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges the stored refresh token for a new pair. Concurrent
// callers share a single outbound refresh and receive the same token or the
// same error.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	return c.refresh(ctx, "")
}

// refresh recovers from a 401 received while presenting failed. If the
// stored credential has already moved on from failed, another caller has
// refreshed it and the current token is returned without a network call. If
// it is gone, the failure was already reported and is returned silently.
// An empty failed forces a refresh.
func (c *Client) refresh(ctx context.Context, failed string) (string, error) {
	// the shared refresh must not be cancelled by whichever caller started it
	flightCtx := context.WithoutCancel(ctx)

	v, err, shared := c.refreshes.Do(refreshGroup, func() (any, error) {
		if failed != "" {
			current, ok := c.store.AccessToken()
			if !ok {
				// an earlier failed refresh purged the credential and has
				// already notified subscribers
				return "", authenticationError(interrors.ErrSessionExpired)
			}
			if current != failed {
				return current, nil
			}
		}
		return c.exchange(flightCtx)
	})
	if shared {
		c.log.Debug().Msg("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchange performs the refresh call. On any failure the stored credential
// is purged and subscribers are told sign-in is required.
func (c *Client) exchange(ctx context.Context) (string, error) {
	refreshToken, ok := c.store.RefreshToken()
	if !ok {
		c.log.Debug().Msg("no refresh token available")
		return "", c.failRefresh(interrors.ErrNoRefreshToken)
	}

	c.log.Debug().Msg("attempting to refresh token")
	resp, err := c.send(ctx, http.MethodPost, refreshPath, refreshRequest{RefreshToken: refreshToken}, "", nil)
	if err != nil {
		return "", c.failRefresh(err)
	}
	if resp.status < 200 || resp.status > 299 {
		c.log.Debug().Int("status", resp.status).Msg("refresh token failed")
		return "", c.failRefresh(responseError(resp.status, resp.payload()))
	}

	var tr tokenResponse
	if err := resp.decode(&tr); err != nil {
		return "", c.failRefresh(err)
	}
	if tr.Token == "" {
		return "", c.failRefresh(responseError(resp.status, resp.payload()))
	}

	token := &oauth2.Token{
		AccessToken:  tr.Token,
		RefreshToken: tr.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, ok := credentials.TokenExpiry(tr.Token); ok {
		token.Expiry = exp
	}
	if err := c.store.UpdateToken(token); err != nil {
		return "", c.failRefresh(err)
	}

	c.log.Debug().Time("expires", token.Expiry).Msg("token refreshed successfully")
	return tr.Token, nil
}

func (c *Client) failRefresh(cause error) *APIError {
	if err := c.store.Clear(); err != nil {
		c.log.Warn().Err(err).Msg("failed to purge credentials after refresh failure")
	}
	apiErr := authenticationError(cause)
	c.log.Warn().Err(cause).Msg("credential refresh failed, sign-in required")
	c.notify(apiErr)
	return apiErr
}
