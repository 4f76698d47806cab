// Package commands implements the CLI command handlers. Each handler is a
// thin body over the configuration store, the transport client, and the
// output formatter.
package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/api"
	"github.com/vantagedata/vantage-cli/pkg/auth"
	"github.com/vantagedata/vantage-cli/pkg/config"
	"github.com/vantagedata/vantage-cli/pkg/output"
)

// ErrReported marks a failure that has already been rendered to the user.
// The entry point exits 1 without printing anything further.
var ErrReported = errors.New("error already reported")

// Deps bundles everything handlers need. Tests construct it directly with
// fakes; NewDeps wires the production instances.
type Deps struct {
	Config *config.Store
	Output *output.Manager
	Stdout io.Writer
	Stderr io.Writer

	// Confirm asks a yes/no question, defaulting to no.
	Confirm func(prompt string) (bool, error)

	// Browser opens the login URL.
	Browser auth.BrowserOpener

	// NewClient builds a transport client for the active profile with the
	// invocation's shared-flag overrides applied.
	NewClient func(args *cli.Args) (*api.Client, error)

	// NewPoller builds an operation poller over a client.
	NewPoller func(c *api.Client) *api.Poller
}

// NewDeps wires the production dependency set around one config store.
func NewDeps(store *config.Store) *Deps {
	d := &Deps{
		Config:  store,
		Output:  output.NewManager(),
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Browser: auth.SystemBrowser{},
		Confirm: func(prompt string) (bool, error) {
			return pterm.DefaultInteractiveConfirm.
				WithDefaultText(prompt).
				WithDefaultValue(false).
				Show()
		},
		NewPoller: api.NewPoller,
	}
	d.NewClient = d.buildClient
	return d
}

// buildClient assembles a client from the active profile, falling back to
// the OS keyring when the profile holds no session token, and wiring token
// rotation back into the store.
func (d *Deps) buildClient(args *cli.Args) (*api.Client, error) {
	name, err := d.Config.Name()
	if err != nil {
		return nil, err
	}
	endpoint, err := d.Config.Endpoint()
	if err != nil {
		return nil, err
	}
	token, err := d.Config.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		if kr, err := auth.LookupToken(name); err == nil && kr != "" {
			token = kr
		}
	}
	key, _ := d.Config.Key()
	secret, _ := d.Config.Secret()

	region, err := d.Config.Region()
	if err != nil {
		return nil, err
	}
	sudo := false
	if args != nil {
		if args.Region() != "" {
			region = args.Region()
		}
		sudo = args.Sudo()
	}

	d.warnExpiredToken(token)

	return api.New(api.Options{
		Endpoint: endpoint,
		Token:    token,
		Key:      key,
		Secret:   secret,
		Region:   region,
		Sudo:     sudo,
		OnTokenRotate: func(tok string) {
			_ = d.Config.SetAuthToken(name, tok)
		},
	}), nil
}

// warnExpiredToken flags a visibly expired session before the call so the
// redirect failure that follows is less surprising.
func (d *Deps) warnExpiredToken(token string) {
	if token == "" {
		return
	}
	claims, err := auth.Inspect(token)
	if err != nil {
		return
	}
	if claims.Expired() {
		fmt.Fprintln(d.Stderr, "warning: session token has expired; run 'vantage login' to refresh it")
	}
}

// printf writes a user-facing status line to stdout.
func (d *Deps) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.Stdout, format, args...)
}

// format resolves the effective output format: the invocation's --format
// override when present, otherwise the profile chain.
func (d *Deps) format(args *cli.Args) (string, error) {
	if args != nil && args.Format() != "" {
		return args.Format(), nil
	}
	return d.Config.Format()
}

// render writes the populated half of a result in the effective format.
// Error halves are rendered too, then reported as already handled.
func (d *Deps) render(args *cli.Args, res api.Result, cfg *output.FormatConfig) error {
	format, err := d.format(args)
	if err != nil {
		return err
	}
	if !res.OK() {
		if rerr := d.Output.Render(d.Stdout, res.Err, format, nil); rerr != nil {
			return rerr
		}
		return ErrReported
	}
	if format == config.FormatJSON && res.Raw != nil && (cfg == nil || len(cfg.Transforms) == 0) {
		return renderRawJSON(d.Stdout, res.Raw)
	}
	return d.Output.Render(d.Stdout, res.Data, format, cfg)
}

// renderRawJSON re-indents the wire payload directly so the server's key
// order survives; decoding into Go maps would sort it.
func renderRawJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
