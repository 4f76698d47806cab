package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/skratchdot/open-golang/open"
	"golang.org/x/oauth2"
)

// BrowserOpener opens a URL in a browser. Swapped for a mock in tests.
type BrowserOpener interface {
	Open(url string) error
}

// SystemBrowser opens URLs with the system default browser.
type SystemBrowser struct{}

// Open opens the URL with the system default browser.
func (SystemBrowser) Open(url string) error {
	return open.Run(url)
}

// Login runs the browser-based authorization-code flow against the control
// plane and returns the resulting session token. A loopback listener
// receives the callback; it is torn down before return on every path,
// including interruption through ctx.
func Login(ctx context.Context, endpoint string, opener BrowserOpener, out io.Writer) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to open callback listener: %w", err)
	}

	state, err := randomState()
	if err != nil {
		_ = listener.Close()
		return "", err
	}

	conf := &oauth2.Config{
		ClientID:    "vantage-cli",
		RedirectURL: fmt.Sprintf("http://%s/callback", listener.Addr()),
		Endpoint: oauth2.Endpoint{
			AuthURL:  endpoint + "/oauth/authorize",
			TokenURL: endpoint + "/oauth/token",
		},
	}

	type callback struct {
		code string
		err  error
	}
	done := make(chan callback, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			done <- callback{err: fmt.Errorf("authorization state mismatch")}
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			done <- callback{err: fmt.Errorf("authorization response carried no code")}
			return
		}
		fmt.Fprintln(w, "Login complete. You can close this window and return to the terminal.")
		done <- callback{code: code}
	})}

	go func() { _ = srv.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state)
	fmt.Fprintf(out, "Opening browser to:\n%s\n", authURL)
	if err := opener.Open(authURL); err != nil {
		fmt.Fprintln(out, "Failed to open browser automatically; please visit the URL above manually.")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case cb := <-done:
		if cb.err != nil {
			return "", cb.err
		}
		token, err := conf.Exchange(ctx, cb.code)
		if err != nil {
			return "", fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return token.AccessToken, nil
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
