package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/social-discovery/internal/domain"
	"github.com/ErlanBelekov/social-discovery/internal/metrics"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

const basePath = "/auth/v1"

// gotrue-go reports non-2xx replies as a formatted string carrying the
// status and raw body.
var statusErrPattern = regexp.MustCompile(`(?s)^response status code (\d+)(?::\s?(.*))?$`)

// API talks to the hosted auth service through gotrue-go. It holds no
// session state.
type API struct {
	gotrue  gotrue.Client
	anonKey string
	httpc   http.Client
	now     func() time.Time
}

func NewAPI(baseURL, anonKey string, client *http.Client) *API {
	a := &API{
		gotrue:  gotrue.New("", anonKey).WithCustomGoTrueURL(strings.TrimRight(baseURL, "/") + basePath),
		anonKey: anonKey,
		now:     time.Now,
	}
	if client != nil {
		a.httpc = *client
	}
	return a
}

type errorResponse struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a user. The returned result has a nil Session when the
// service requires email confirmation first.
func (a *API) SignUp(ctx context.Context, email, password string) (*domain.SignUpResult, error) {
	var resp *types.SignupResponse
	err := a.do(ctx, "sign_up", func(gt gotrue.Client) (err error) {
		resp, err = gt.WithToken(a.anonKey).Signup(types.SignupRequest{Email: email, Password: password})
		return err
	})
	if err != nil {
		return nil, err
	}

	if resp.Session.AccessToken != "" && resp.Session.User.ID != uuid.Nil {
		session := a.toSession(&resp.Session)
		return &domain.SignUpResult{User: &session.User, Session: session}, nil
	}

	if resp.User.ID == uuid.Nil {
		return nil, fmt.Errorf("sign up: response carries neither user nor session")
	}
	user := toUser(resp.User)
	return &domain.SignUpResult{User: &user}, nil
}

func (a *API) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp *types.TokenResponse
	err := a.do(ctx, "sign_in", func(gt gotrue.Client) (err error) {
		resp, err = gt.WithToken(a.anonKey).SignInWithEmailPassword(email, password)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a.sessionFrom(&resp.Session)
}

func (a *API) RefreshSession(ctx context.Context, refreshToken string) (*domain.Session, error) {
	var resp *types.TokenResponse
	err := a.do(ctx, "refresh", func(gt gotrue.Client) (err error) {
		resp, err = gt.WithToken(a.anonKey).RefreshToken(refreshToken)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a.sessionFrom(&resp.Session)
}

// Logout revokes the refresh tokens behind accessToken on the service side.
func (a *API) Logout(ctx context.Context, accessToken string) error {
	return a.do(ctx, "sign_out", func(gt gotrue.Client) error {
		return gt.WithToken(accessToken).Logout()
	})
}

// Ping is satisfied for health.Pinger.
func (a *API) Ping(ctx context.Context) error {
	return a.do(ctx, "health", func(gt gotrue.Client) error {
		_, err := gt.HealthCheck()
		return err
	})
}

func (a *API) do(ctx context.Context, op string, call func(gotrue.Client) error) error {
	start := time.Now()
	err := classifyErr(op, call(a.gotrue.WithClient(a.httpClient(ctx))))

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if ae, ok := domain.AsAuthError(err); ok {
			outcome = string(ae.Kind)
		}
	}
	metrics.AuthRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.AuthRequestsTotal.WithLabelValues(op, outcome).Inc()
	return err
}

// httpClient binds ctx to every request the SDK builds, since its endpoint
// methods take no context.
func (a *API) httpClient(ctx context.Context) http.Client {
	c := a.httpc
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = ctxTransport{ctx: ctx, base: base}
	return c
}

type ctxTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t ctxTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

func classifyErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, types.ErrInvalidTokenRequest) {
		return domain.NewAuthError(domain.KindValidation, http.StatusBadRequest, "Email and password are required")
	}

	m := statusErrPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	status, _ := strconv.Atoi(m[1])

	var er errorResponse
	_ = json.Unmarshal([]byte(m[2]), &er)
	msg := firstNonEmpty(er.Msg, er.ErrorDescription, er.Message, er.Error)
	return domain.NewAuthError(classify(status, er), status, msg)
}

func classify(status int, er errorResponse) domain.AuthErrorKind {
	switch er.ErrorCode {
	case "invalid_credentials":
		return domain.KindInvalidCredentials
	case "email_not_confirmed":
		return domain.KindEmailNotConfirmed
	case "user_already_exists", "email_exists":
		return domain.KindUserExists
	case "weak_password":
		return domain.KindWeakPassword
	case "over_request_rate_limit", "over_email_send_rate_limit":
		return domain.KindRateLimited
	case "validation_failed", "email_address_invalid":
		return domain.KindValidation
	}

	switch {
	case status == http.StatusTooManyRequests:
		return domain.KindRateLimited
	case er.Error == "invalid_grant":
		return domain.KindInvalidCredentials
	case status == http.StatusUnprocessableEntity:
		return domain.KindValidation
	}
	return domain.KindUnknown
}

func (a *API) sessionFrom(s *types.Session) (*domain.Session, error) {
	if s.AccessToken == "" || s.User.ID == uuid.Nil {
		return nil, fmt.Errorf("token response: %w", domain.ErrTokenInvalid)
	}
	return a.toSession(s), nil
}

func (a *API) toSession(s *types.Session) *domain.Session {
	var expiresAt time.Time
	switch {
	case s.ExpiresAt > 0:
		expiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		expiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second)
	default:
		expiresAt = tokenExpiry(s.AccessToken)
	}

	return &domain.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresAt:    expiresAt,
		User:         toUser(s.User),
	}
}

func toUser(u types.User) domain.User {
	return domain.User{
		ID:               u.ID.String(),
		Email:            u.Email,
		EmailConfirmedAt: u.EmailConfirmedAt,
		CreatedAt:        u.CreatedAt,
	}
}

// tokenExpiry reads exp without verifying the signature. A zero time makes
// the session count as expired.
func tokenExpiry(accessToken string) time.Time {
	tok, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := tok.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
