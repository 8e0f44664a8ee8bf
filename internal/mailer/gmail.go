package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailConfig holds the OAuth files used by the Gmail API transport
type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	// Prompt receives the authorization URL when no cached token exists
	Prompt io.Writer
	// Input supplies the authorization code typed by the user
	Input io.Reader
	Log   *slog.Logger
}

// GmailTransport sends mail with the Gmail API as the authenticated user
type GmailTransport struct {
	cfg GmailConfig

	mu      sync.Mutex
	service *gmail.Service
	// pending carries the result of an authorization code read that outlived its send
	pending chan scanResult
}

type scanResult struct {
	code string
	err  error
}

var _ Transport = (*GmailTransport)(nil)

// NewGmailTransport creates a transport; OAuth happens on the first send
func NewGmailTransport(cfg GmailConfig) *GmailTransport {
	if cfg.TokenPath == "" {
		cfg.TokenPath = "token.json"
	}
	if cfg.Prompt == nil {
		cfg.Prompt = os.Stdout
	}
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &GmailTransport{cfg: cfg}
}

// Send uploads msg as a raw RFC 5322 message
func (g *GmailTransport) Send(ctx context.Context, msg Message) error {
	srv, err := g.getService(ctx)
	if err != nil {
		return err
	}

	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return fmt.Errorf("%w: failed to render message: %w", ErrSend, err)
	}

	raw := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(buf.Bytes())}
	if _, err := srv.Users.Messages.Send("me", raw).Context(ctx).Do(); err != nil {
		return classifyHTTP(err)
	}
	return nil
}

// getService builds the Gmail client once, running the OAuth flow if needed
func (g *GmailTransport) getService(ctx context.Context) (*gmail.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.service != nil {
		return g.service, nil
	}

	b, err := os.ReadFile(g.cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read Gmail credentials file: %v", ErrConfig, err)
	}

	oauthCfg, err := google.ConfigFromJSON(b, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse Gmail credentials: %v", ErrConfig, err)
	}

	client, err := g.getClient(ctx, oauthCfg)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to create Gmail client: %w", ErrSend, err)
	}

	g.service = srv
	return srv, nil
}

// getClient retrieves a token, saves it, then returns the generated client
func (g *GmailTransport) getClient(ctx context.Context, oauthCfg *oauth2.Config) (*http.Client, error) {
	tok, err := tokenFromFile(g.cfg.TokenPath)
	if err != nil {
		tok, err = g.getTokenFromWeb(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(g.cfg.TokenPath, tok); err != nil {
			g.cfg.Log.Warn("unable to cache oauth token", slog.String("path", g.cfg.TokenPath), slog.String("error", err.Error()))
		}
	}
	// The client outlives the first request, so it must not inherit its deadline
	return oauthCfg.Client(context.Background(), tok), nil
}

// getTokenFromWeb asks the user to authorize the app and exchanges the returned code
func (g *GmailTransport) getTokenFromWeb(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(g.cfg.Prompt, "Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	authCode, err := g.readCode(ctx)
	if err != nil {
		return nil, err
	}

	tok, err := oauthCfg.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to retrieve token from web: %w", ErrAuth, err)
	}
	return tok, nil
}

// readCode waits for the authorization code until ctx is done. A read abandoned by an
// expired send is picked up again by the next one. Callers hold g.mu.
func (g *GmailTransport) readCode(ctx context.Context) (string, error) {
	if g.pending == nil {
		ch := make(chan scanResult, 1)
		go func(in io.Reader) {
			var code string
			_, err := fmt.Fscan(in, &code)
			ch <- scanResult{code: code, err: err}
		}(g.cfg.Input)
		g.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: no authorization code entered before the deadline: %w", ErrAuth, ctx.Err())
	case res := <-g.pending:
		g.pending = nil
		if res.err != nil {
			return "", fmt.Errorf("%w: unable to read authorization code: %v", ErrAuth, res.err)
		}
		return res.code, nil
	}
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// classifyHTTP maps Google API and OAuth errors onto the dispatcher sentinels
func classifyHTTP(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
		return fmt.Errorf("%w: %w", ErrSend, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}

	return fmt.Errorf("%w: %w", ErrSend, err)
}
