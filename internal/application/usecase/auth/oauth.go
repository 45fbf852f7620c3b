package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/auth"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const (
	ProviderGoogle = "google"

	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

var (
	ErrUnknownProvider = errors.New("unknown sign-in provider")
	ErrStateMismatch   = errors.New("sign-in state does not match")
	ErrPopupCancelled  = errors.New("sign-in was cancelled")
	ErrEmailUnverified = errors.New("provider did not return a verified email")
)

// OAuthProvider is one popup sign-in provider.
type OAuthProvider struct {
	Config      *oauth2.Config
	UserInfoURL string
}

// GoogleProvider returns nil when no client id is configured.
func GoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	if clientID == "" {
		return nil
	}
	return &OAuthProvider{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

type OAuthUseCase struct {
	owner     Owner
	providers map[string]*OAuthProvider
	jwtSvc    *auth.JWTService
	logger    logger.Logger
}

func NewOAuthUseCase(owner Owner, providers map[string]*OAuthProvider, jwtSvc *auth.JWTService, log logger.Logger) *OAuthUseCase {
	enabled := make(map[string]*OAuthProvider, len(providers))
	for name, p := range providers {
		if p != nil {
			enabled[name] = p
		}
	}
	return &OAuthUseCase{owner: owner, providers: enabled, jwtSvc: jwtSvc, logger: log}
}

func (uc *OAuthUseCase) provider(name string) (*OAuthProvider, error) {
	p, ok := uc.providers[name]
	if !ok {
		return nil, apperror.NewUnauthorized(fmt.Sprintf("provider %q is not enabled", name), ErrUnknownProvider)
	}
	return p, nil
}

// PopupStart is what the caller must keep until the provider redirects back.
type PopupStart struct {
	AuthURL  string
	State    string
	Verifier string
}

// ExecuteBegin opens the popup flow with a fresh state and PKCE verifier.
func (uc *OAuthUseCase) ExecuteBegin(_ context.Context, providerName string) (*PopupStart, error) {
	p, err := uc.provider(providerName)
	if err != nil {
		return nil, err
	}
	state := oauth2.GenerateVerifier()
	verifier := oauth2.GenerateVerifier()
	return &PopupStart{
		AuthURL:  p.Config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:    state,
		Verifier: verifier,
	}, nil
}

type CallbackInput struct {
	Provider string
	Code     string
	State    string
	// Error is the provider's error parameter, set when the user closed or denied the popup.
	Error string

	ExpectedState string
	Verifier      string
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (uc *OAuthUseCase) ExecuteCallback(ctx context.Context, input CallbackInput) (*Session, error) {
	ctx, span := tracer.Start(ctx, "OAuth.Callback")
	defer span.End()
	span.SetAttributes(attribute.String("provider", input.Provider))

	p, err := uc.provider(input.Provider)
	if err != nil {
		return nil, err
	}
	if input.Error != "" || input.Code == "" {
		return nil, apperror.NewUnauthorized(input.Error, ErrPopupCancelled)
	}
	if input.ExpectedState == "" || input.State != input.ExpectedState {
		return nil, apperror.NewUnauthorized("state mismatch", ErrStateMismatch)
	}

	tok, err := p.Config.Exchange(ctx, input.Code, oauth2.VerifierOption(input.Verifier))
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewUnauthorized("code exchange failed", err)
	}

	info, err := fetchUserInfo(ctx, p.Config.Client(ctx, tok), p.UserInfoURL)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewUnauthorized("failed to read account", err)
	}
	if !info.EmailVerified || info.Email == "" {
		return nil, apperror.NewUnauthorized("account email is not verified", ErrEmailUnverified)
	}
	if !uc.owner.matches(info.Email) {
		uc.logger.Warn("Rejected popup sign-in", zap.String("provider", input.Provider), zap.String("email", info.Email))
		return nil, apperror.NewUnauthorized("only the site owner can sign in", nil)
	}

	token, claims, err := uc.jwtSvc.GenerateToken(uc.owner.ID, uc.owner.Email, input.Provider)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	return sessionFrom(token, claims), nil
}

func fetchUserInfo(ctx context.Context, client *http.Client, url string) (*userInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}
	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}
