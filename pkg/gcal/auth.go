package gcal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shiftcal/shiftcal/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Authenticator yields an authorized Calendar service, either from the
// token cached in the local database or through the console consent flow.
// Token persistence, including persistence after background refreshes, is
// owned here; the reconciler only borrows clients.
type Authenticator struct {
	db          *sql.DB
	oauthConfig *oauth2.Config
	interactive bool
	in          io.Reader

	service *gcal.Service
}

func NewAuthenticator(db *sql.DB, cfg config.Application) *Authenticator {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  "http://localhost",
		Scopes:       []string{gcal.CalendarEventsScope},
	}

	return &Authenticator{
		db:          db,
		oauthConfig: oauthConfig,
		interactive: cfg.Sync.Interactive,
		in:          os.Stdin,
	}
}

// Service returns an authorized Calendar service, building and caching it on
// first use. Without a cached token it either runs the consent flow
// (interactive) or fails with ErrMissingCredentials.
func (a *Authenticator) Service(ctx context.Context) (*gcal.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	token, err := a.loadToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		if !a.interactive {
			return nil, ErrMissingCredentials
		}
		token, err = a.authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	source := &persistingTokenSource{
		base: a.oauthConfig.TokenSource(ctx, token),
		auth: a,
		ctx:  ctx,
		last: token,
	}
	service, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}
	a.service = service
	return service, nil
}

// Reauthorize discards the cached token and re-runs the consent flow once.
func (a *Authenticator) Reauthorize(ctx context.Context) error {
	if !a.interactive {
		return ErrMissingCredentials
	}
	a.service = nil
	if _, err := a.db.ExecContext(ctx, "DELETE FROM google_auth WHERE id = 1"); err != nil {
		return fmt.Errorf("unable to discard cached token: %w", err)
	}
	_, err := a.authorize(ctx)
	return err
}

// authorize runs the console consent flow: print the URL, read the pasted
// code, exchange and store the token.
func (a *Authenticator) authorize(ctx context.Context) (*oauth2.Token, error) {
	url := a.oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open the following link in your browser, authorize the app and paste the code here:\n%v\n> ", url)

	var code string
	if _, err := fmt.Fscan(a.in, &code); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange code for token: %w", err)
	}
	if err := a.saveToken(ctx, token); err != nil {
		return nil, err
	}
	log.Info("Stored Google authorization token")
	return token, nil
}

func (a *Authenticator) loadToken(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiryTimestamp int64
	err := a.db.QueryRowContext(ctx, "SELECT access_token, refresh_token, expiry FROM google_auth WHERE id = 1").
		Scan(&token.AccessToken, &token.RefreshToken, &expiryTimestamp)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to load Google auth token: %w", err)
	}

	token.Expiry = time.Unix(expiryTimestamp, 0)
	return &token, nil
}

func (a *Authenticator) saveToken(ctx context.Context, token *oauth2.Token) error {
	// Google omits the refresh token on refreshes; keep the stored one then.
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO google_auth (id, access_token, refresh_token, expiry) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN google_auth.refresh_token ELSE excluded.refresh_token END,
			expiry = excluded.expiry`,
		token.AccessToken, token.RefreshToken, token.Expiry.Unix())
	if err != nil {
		return fmt.Errorf("unable to store Google auth token: %w", err)
	}
	return nil
}

// persistingTokenSource writes refreshed tokens back to the database so the
// next run starts from a valid credential.
type persistingTokenSource struct {
	base oauth2.TokenSource
	auth *Authenticator
	ctx  context.Context
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		if err := s.auth.saveToken(s.ctx, token); err != nil {
			log.Errorf("failed to persist refreshed token: %v", err)
		}
		s.last = token
	}
	return token, nil
}
