package commands

import (
	"context"
	"fmt"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/auth"
)

func loginLeaf(d *Deps) *cli.Command {
	return cli.Leaf("login", "Authenticate through the browser", []cli.Arg{
		{Name: "keyring", Help: "store the session token in the OS keyring instead of the config file", Bool: true},
	}, d.login)
}

func logoutLeaf(d *Deps) *cli.Command {
	return cli.Leaf("logout", "Discard the stored session token", nil, d.logout)
}

func (d *Deps) login(ctx context.Context, args *cli.Args) error {
	name, err := d.Config.Name()
	if err != nil {
		return err
	}
	endpoint, err := d.Config.Endpoint()
	if err != nil {
		return err
	}

	token, err := auth.Login(ctx, endpoint, d.Browser, d.Stderr)
	if err != nil {
		return err
	}

	if args.Bool("keyring") {
		if err := auth.StoreToken(name, token); err != nil {
			return err
		}
		// Clear any stale file-stored token so the keyring copy wins.
		if err := d.Config.SetAuthToken(name, ""); err != nil {
			return err
		}
		d.printf("Logged in; session token stored in the OS keyring\n")
	} else {
		if err := d.Config.SetAuthToken(name, token); err != nil {
			return err
		}
		d.printf("Logged in; session token stored on profile %q\n", name)
	}

	if claims, err := auth.Inspect(token); err == nil && claims.Subject != "" {
		d.printf("Authenticated as %s\n", claims.Subject)
	}
	return nil
}

func (d *Deps) logout(ctx context.Context, args *cli.Args) error {
	name, err := d.Config.Name()
	if err != nil {
		return err
	}
	if err := d.Config.SetAuthToken(name, ""); err != nil {
		return err
	}
	// Best effort: the keyring may be absent on headless systems.
	if err := auth.EraseToken(name); err != nil {
		fmt.Fprintf(d.Stderr, "warning: %v\n", err)
	}
	d.printf("Logged out of profile %q\n", name)
	return nil
}
