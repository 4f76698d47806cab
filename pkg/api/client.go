// Package api implements the authenticated transport client for the Vantage
// control-plane API, the asynchronous operation poller, and the log stream.
//
// All REST and GraphQL traffic funnels through Client.do, which normalizes
// every outcome into a Result value. Redirect responses are treated as
// authentication failures and terminate the process: the server redirects
// unauthenticated API calls to its login page, so continuing is never
// meaningful.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Version is the client version advertised in the User-Agent header. It is
// overridden at build time.
var Version = "1.3.0"

// sessionCookie is the cookie carrying the session credential.
const sessionCookie = "session_token"

// Options configures a Client.
type Options struct {
	Endpoint string
	Token    string
	Key      string
	Secret   string
	Region   string
	Sudo     bool

	// Insecure disables TLS verification. Test-only escape hatch.
	Insecure bool

	// OnTokenRotate is invoked once when a response carries a session token
	// different from the one the client was constructed with. Wired back
	// into the configuration store by the client factory.
	OnTokenRotate func(token string)

	// HTTPClient overrides the underlying client in tests. Its CheckRedirect
	// is replaced so redirects surface to the caller.
	HTTPClient *http.Client
}

// Client issues authenticated calls against one endpoint and decodes
// responses into the uniform Result shape.
type Client struct {
	endpoint      string
	token         string
	key           string
	secret        string
	region        string
	sudo          bool
	http          *http.Client
	onTokenRotate func(string)

	// exit and stderr are swapped in tests of the fatal redirect path.
	exit   func(code int)
	stderr io.Writer
}

// New creates a transport client for the given endpoint and credentials.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
		if opts.Insecure {
			hc.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}
	// Redirects must reach the caller untouched so they can be recognized as
	// authentication failures.
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		endpoint:      strings.TrimSuffix(opts.Endpoint, "/"),
		token:         opts.Token,
		key:           opts.Key,
		secret:        opts.Secret,
		region:        opts.Region,
		sudo:          opts.Sudo,
		http:          hc,
		onTokenRotate: opts.OnTokenRotate,
		exit:          os.Exit,
		stderr:        os.Stderr,
	}
}

// Token returns the session credential the client currently holds. It may
// differ from the constructed one after a rotation.
func (c *Client) Token() string {
	return c.token
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) Result {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, params url.Values, body interface{}) Result {
	return c.do(ctx, http.MethodPost, path, params, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, params url.Values, body interface{}) Result {
	return c.do(ctx, http.MethodPut, path, params, body)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, params url.Values, body interface{}) Result {
	return c.do(ctx, http.MethodPatch, path, params, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, params url.Values) Result {
	return c.do(ctx, http.MethodDelete, path, params, nil)
}

// do builds, executes, and decodes one request.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body interface{}) Result {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return errResult("invalid request URL: %v", err)
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errResult("failed to encode request body: %v", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return errResult("failed to build request: %v", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vantage-cli/"+Version)
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.region != "" {
		req.Header.Set("X-Region", c.region)
	}
	if c.sudo {
		req.Header.Set("X-Sudo", "true")
	}
	c.applyAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		// DNS, connection, and TLS failures become error values, never
		// uncaught errors.
		return errResult("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		c.fatalRedirect(resp)
	}

	c.rotateToken(resp)

	return c.decode(resp)
}

// buildURL joins the base endpoint with path and encodes query parameters.
func (c *Client) buildURL(path string, params url.Values) (string, error) {
	full := c.endpoint + "/" + strings.TrimPrefix(path, "/")
	u, err := url.Parse(full)
	if err != nil {
		return "", err
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

// applyAuth attaches the session cookie, or the key/secret pair as basic
// auth when no session token is held. Token takes priority when both exist.
func (c *Client) applyAuth(req *http.Request) {
	if c.token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.token})
		return
	}
	if c.key != "" && c.secret != "" {
		req.SetBasicAuth(c.key, c.secret)
	}
}

// fatalRedirect reports a redirect response as an authentication failure and
// terminates the process. This is a hard stop, not a recoverable error.
func (c *Client) fatalRedirect(resp *http.Response) {
	location := resp.Header.Get("Location")
	if strings.Contains(location, "/login") {
		fmt.Fprintln(c.stderr, "Unauthorized: your session has expired or is missing. Run 'vantage login' to authenticate.")
	} else {
		fmt.Fprintf(c.stderr, "Unexpected redirect from server (to %s); cannot continue.\n", location)
	}
	c.exit(1)
}

// rotateToken captures a session token issued by the server that differs
// from the one this client holds, updating the client and notifying the
// configured setter.
func (c *Client) rotateToken(resp *http.Response) {
	for _, cookie := range resp.Cookies() {
		if cookie.Name != sessionCookie || cookie.Value == "" || cookie.Value == c.token {
			continue
		}
		c.token = cookie.Value
		if c.onTokenRotate != nil {
			c.onTokenRotate(cookie.Value)
		}
		return
	}
}

// decode turns an HTTP response into the uniform Result shape. 204 yields an
// empty result; an unparseable body yields a synthesized error; bodies of
// status >= 400 land in the error slot, everything else in the data slot.
func (c *Client) decode(resp *http.Response) Result {
	if resp.StatusCode == http.StatusNoContent {
		return Result{}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errResult("failed to read response: %v", err)
	}

	var parsed interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return errResult("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if resp.StatusCode >= 400 {
		errBody, ok := parsed.(map[string]interface{})
		if !ok {
			return errResult("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		if _, ok := errBody["message"]; !ok {
			errBody["message"] = fmt.Sprintf("%d - %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		errBody["success"] = false
		return Result{Err: errBody}
	}

	return Result{Data: parsed, Raw: raw}
}
