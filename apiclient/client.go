package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/model"
	utilsContext "github.com/tdhoang/evdealer-client/utils/context"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
	"github.com/tdhoang/evdealer-client/utils/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every request to the dealer backend.
const DefaultTimeout = 10 * time.Second

// expirySkew triggers a proactive refresh when the access token expires
// within this window, saving a guaranteed 401 round trip.
const expirySkew = 30 * time.Second

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Store      TokenStore
	HTTPClient *http.Client
}

// Client issues authenticated requests against the dealer backend. Every
// request carries a bearer token when one is stored; a 401 triggers exactly
// one silent refresh-and-retry, with concurrent refreshes coalesced into a
// single in-flight call.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	refresh singleflight.Group
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		store:   store,
	}, nil
}

// Do sends one request and returns the raw response body on 2xx. All
// failures come back as a typed CustomError; nothing panics or leaks raw
// transport errors to callers.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, cerr.SetCustomError(constant.ErrInvalidRequest)
		}
	}

	token, err := c.store.Get(KeyToken)
	if err != nil {
		logger.Error("[Do] read token store", zap.String("error", err.Error()))
		return nil, cerr.SetCustomError(constant.ErrInternal)
	}
	if token != "" && tokenExpiringSoon(token) {
		// A failed proactive refresh is not fatal here: the request either
		// still succeeds or comes back 401 and takes the retry path below.
		if fresh, rerr := c.refreshAccessToken(ctx); rerr == nil {
			token = fresh
		}
	}

	status, respBody, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return nil, classifyTransport(err)
	}

	if status == http.StatusUnauthorized {
		fresh, rerr := c.refreshAccessToken(ctx)
		if rerr != nil {
			return nil, rerr
		}
		status, respBody, err = c.send(ctx, method, path, query, payload, fresh)
		if err != nil {
			return nil, classifyTransport(err)
		}
	}

	if status >= 200 && status < 300 {
		return respBody, nil
	}
	return nil, errorFromResponse(status, respBody)
}

// send builds and executes a single HTTP request. The request is rebuilt on
// every call so the body can be replayed by the 401 retry.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	requestID, ok := utilsContext.GetRequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("[send] request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.String("error", err.Error()),
		)
		return 0, nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	logger.Debug("[send] request done",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	)
	return resp.StatusCode, respBody, nil
}

// refreshAccessToken performs the silent token refresh. Concurrent callers
// share one in-flight refresh; a rejected refresh clears all stored
// credentials so an outer layer can route to login.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (interface{}, error) {
		refreshToken, err := c.store.Get(KeyRefreshToken)
		if err != nil || refreshToken == "" {
			_ = c.store.Clear()
			return nil, cerr.SetCustomError(constant.ErrUnauthorized)
		}

		payload, _ := json.Marshal(model.RefreshRequest{RefreshToken: refreshToken})
		status, body, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, payload, "")
		if err != nil {
			// transport failure: credentials may still be good, keep them
			return nil, classifyTransport(err)
		}
		if status < 200 || status >= 300 {
			logger.Warn("[refreshAccessToken] refresh rejected", zap.Int("status", status))
			_ = c.store.Clear()
			return nil, cerr.SetCustomError(constant.ErrUnauthorized)
		}

		var res model.RefreshResult
		var env model.Envelope
		if jsonErr := json.Unmarshal(body, &env); jsonErr == nil && env.Data != nil {
			err = json.Unmarshal(env.Data, &res)
		} else {
			err = json.Unmarshal(body, &res)
		}
		if err != nil || res.Token == "" {
			_ = c.store.Clear()
			return nil, cerr.SetCustomError(constant.ErrUnauthorized)
		}

		if err := c.store.Set(KeyToken, res.Token); err != nil {
			return nil, cerr.SetCustomError(constant.ErrInternal)
		}
		if res.RefreshToken != "" {
			if err := c.store.Set(KeyRefreshToken, res.RefreshToken); err != nil {
				return nil, cerr.SetCustomError(constant.ErrInternal)
			}
		}
		return res.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// tokenExpiringSoon inspects the access token's exp claim without verifying
// the signature. Opaque or claimless tokens are left for the server to judge.
func tokenExpiringSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < expirySkew
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return cerr.SetCustomError(constant.ErrTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return cerr.SetCustomError(constant.ErrTimeout)
	}
	return cerr.SetCustomError(constant.ErrNetwork)
}

// errorFromResponse maps a non-2xx response to a typed error. Domain and
// not-found rejections keep the backend message verbatim.
func errorFromResponse(status int, body []byte) error {
	errType := constant.ErrorTypeForStatus(status)
	if errType == constant.ErrDomain || errType == constant.ErrNotFound {
		var env model.Envelope
		if len(body) > 0 && json.Unmarshal(body, &env) == nil {
			if msg := env.ErrorText(); msg != "" {
				return cerr.SetCustomErrorMessage(errType, msg)
			}
		}
	}
	return cerr.SetCustomError(errType)
}
