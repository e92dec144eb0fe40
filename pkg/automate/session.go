package automate

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

const (
	loginPath = apiPrefix + "/apitoken"

	// tokenLifetime is how long an issued token is trusted. The server
	// reports roughly one hour; five minutes are kept in reserve.
	tokenLifetime = 55 * time.Minute

	headerClientID = "ClientId"
)

// loginRequest is the body of the login exchange.
type loginRequest struct {
	UserName          string `json:"UserName"`
	Password          string `json:"Password"`
	TwoFactorPasscode string `json:"TwoFactorPasscode,omitempty"`
}

// loginResponse is the subset of the login reply the client reads.
type loginResponse struct {
	AccessToken         string `json:"AccessToken"`
	TokenType           string `json:"TokenType"`
	ExpirationDate      string `json:"ExpirationDate"`
	IsTwoFactorRequired bool   `json:"IsTwoFactorRequired"`
}

// session owns the bearer credential. The fields are guarded by mu, but the
// login exchange runs outside the lock: two callers that find the token
// expired at the same moment both log in and the later token wins.
type session struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
	logger     hclog.Logger
	metrics    *Metrics
	now        func() time.Time

	mu    sync.Mutex
	token *oauth2.Token
}

func newSession(cfg *Config, httpClient *http.Client, logger hclog.Logger) *session {
	return &session{
		cfg:        cfg,
		baseURL:    cfg.ServerURL,
		httpClient: httpClient,
		logger:     logger.Named("session"),
		metrics:    cfg.Metrics,
		now:        cfg.Now,
	}
}

// current returns the cached token if it has not expired, otherwise nil.
func (s *session) current() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.AccessToken == "" {
		return nil
	}
	if !s.now().Before(s.token.Expiry) {
		return nil
	}
	return s.token
}

// invalidate drops the cached token so the next call logs in again.
func (s *session) invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

// ensureAuthenticated returns a token whose recorded expiry is in the future,
// logging in first if necessary. Login failures are returned as-is; retry
// policy belongs to the caller.
func (s *session) ensureAuthenticated(ctx context.Context) (*oauth2.Token, error) {
	if tok := s.current(); tok != nil {
		return tok, nil
	}

	tok, err := s.login(ctx)
	s.metrics.observeLogin(err)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	return tok, nil
}

// login performs the credential exchange.
func (s *session) login(ctx context.Context) (*oauth2.Token, error) {
	const op = "Login"

	reqBody, err := json.Marshal(loginRequest{
		UserName:          s.cfg.Username,
		Password:          s.cfg.Password,
		TwoFactorPasscode: s.cfg.TwoFactorCode,
	})
	if err != nil {
		return nil, &Error{Op: op, Err: ErrAuthentication, Cause: err, Msg: "failed to marshal login request"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &Error{Op: op, Err: ErrAuthentication, Cause: err, Msg: "failed to create request"}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerClientID, s.cfg.ClientID)

	issuedAt := s.now()
	s.logger.Debug("requesting access token", "username", s.cfg.Username)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Err: ErrAuthentication, Cause: err, Msg: "login request failed"}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Err: ErrAuthentication, Cause: err, Msg: "failed to read login response"}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Op:         op,
			Err:        ErrAuthentication,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var lr loginResponse
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return nil, &Error{Op: op, Err: ErrAuthentication, Cause: err, Msg: "failed to decode login response"}
	}

	if lr.AccessToken == "" {
		msg := "login response did not include an access token"
		if lr.IsTwoFactorRequired {
			msg = "two-factor passcode required"
			if s.cfg.TwoFactorCode != "" {
				msg = "two-factor passcode rejected"
			}
		}
		return nil, &Error{Op: op, Err: ErrAuthentication, Msg: msg}
	}

	tokenType := lr.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	tok := &oauth2.Token{
		AccessToken: lr.AccessToken,
		TokenType:   tokenType,
		Expiry:      issuedAt.Add(tokenLifetime),
	}

	s.logger.Info("obtained access token",
		"expires", tok.Expiry.Format(time.RFC3339),
		"server_expires", lr.ExpirationDate,
	)

	return tok, nil
}

