// Package google wraps the Google Sheets, Drive and Gmail APIs used by the
// batch commands, authorized with a desktop OAuth client.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	apperrors "github.com/jhogstrom/ess-arbetsschema/pkg/errors"
)

// Scopes requested for the stored token.
var Scopes = []string{
	sheets.SpreadsheetsReadonlyScope,
	drive.DriveFileScope,
	gmail.GmailSendScope,
}

var ErrAuthorization = errors.New("google authorization failed")

// Credentials hands out authorized client options. The token is cached in
// tokenFile; without one the installed-app flow runs once in the browser.
type Credentials struct {
	config    *oauth2.Config
	tokenFile string
	logger    *zap.Logger
}

// LoadCredentials reads the OAuth client secrets of a desktop app.
func LoadCredentials(credentialsFile, tokenFile string, logger *zap.Logger) (*Credentials, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("credentials %s: %w", credentialsFile, apperrors.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	cfg, err := googleoauth.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &Credentials{config: cfg, tokenFile: tokenFile, logger: logger}, nil
}

// ClientOption returns an option authorizing API clients with the cached token.
func (c *Credentials) ClientOption(ctx context.Context) (option.ClientOption, error) {
	tok, err := c.loadToken()
	if err != nil {
		c.logger.Info("no usable token, starting authorization", zap.String("token_file", c.tokenFile))
		if tok, err = c.authorize(ctx); err != nil {
			return nil, err
		}
		if err := c.saveToken(tok); err != nil {
			return nil, err
		}
	}
	ts := &savingTokenSource{
		base: c.config.TokenSource(ctx, tok),
		last: tok.AccessToken,
		save: c.saveToken,
		log:  c.logger,
	}
	return option.WithTokenSource(oauth2.ReuseTokenSource(tok, ts)), nil
}

func (c *Credentials) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.tokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" && !tok.Valid() {
		return nil, errors.New("token expired without refresh token")
	}
	return &tok, nil
}

func (c *Credentials) saveToken(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(c.tokenFile); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	if err := os.WriteFile(c.tokenFile, data, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// authorize runs the loopback redirect flow: the consent page redirects to a
// listener on 127.0.0.1 which receives the code.
func (c *Credentials) authorize(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("%w: listen: %v", ErrAuthorization, err)
	}
	cfg := *c.config
	cfg.RedirectURL = "http://" + ln.Addr().String()
	state := uuid.NewString()

	codes := make(chan string, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state || q.Get("code") == "" {
			http.Error(w, "invalid authorization response", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		select {
		case codes <- q.Get("code"):
		default:
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	c.logger.Info("open this URL in a browser to authorize access",
		zap.String("url", cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)))

	select {
	case code := <-codes:
		tok, err := cfg.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuthorization, err)
		}
		return tok, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrAuthorization, ctx.Err())
	}
}

// savingTokenSource writes refreshed tokens back to the token file.
type savingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	last string
	save func(*oauth2.Token) error
	log  *zap.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.save(tok); err != nil {
			s.log.Warn("could not store refreshed token", zap.Error(err))
		}
	}
	return tok, nil
}
