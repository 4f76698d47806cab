package commands

import (
	"context"
	"sort"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/api"
	"github.com/vantagedata/vantage-cli/pkg/config"
	"github.com/vantagedata/vantage-cli/pkg/output"
	"github.com/vantagedata/vantage-cli/pkg/secrets"
)

// argProfileName selects the profile to operate on; empty means the current
// one.
var argProfileName = cli.Arg{Name: "name", Shorthand: "n", Help: "profile name"}

func profileTree(d *Deps) *cli.Command {
	return cli.Group("profile", "Manage connection profiles",
		cli.Leaf("list", "List configured profiles", nil, d.profileList),
		cli.Leaf("show", "Show a profile's settings", []cli.Arg{argProfileName}, d.profileShow),
		cli.Leaf("add", "Add a new profile", []cli.Arg{
			{Name: "name", Shorthand: "n", Help: "profile name", Required: true},
			{Name: "endpoint", Help: "API base URL", Required: true},
			{Name: "region", Help: "default region"},
			{Name: "output-fmt", Help: "profile output format", Choices: config.ValidFormats},
			{Name: "key", Help: "API key for non-interactive auth"},
			{Name: "secret", Help: "API secret for non-interactive auth"},
			{Name: "org", Help: "default organization id"},
		}, d.profileAdd),
		cli.Leaf("remove", "Remove a profile", []cli.Arg{
			{Name: "name", Shorthand: "n", Help: "profile name", Required: true},
		}, d.profileRemove),
		cli.Leaf("use", "Switch the current profile", []cli.Arg{
			{Name: "name", Shorthand: "n", Help: "profile name", Required: true},
		}, d.profileUse),
		cli.Leaf("set-token", "Store a session token on a profile", []cli.Arg{
			argProfileName,
			{Name: "token", Help: "session token", Required: true},
		}, d.profileSetToken),
		cli.Leaf("set-org", "Store a default organization on a profile", []cli.Arg{
			argProfileName,
			{Name: "org", Help: "organization id", Required: true},
		}, d.profileSetOrg),
		cli.Leaf("set-format", "Store an output format on a profile", []cli.Arg{
			argProfileName,
			{Name: "output-fmt", Help: "output format", Required: true, Choices: config.ValidFormats},
		}, d.profileSetFormat),
	)
}

func (d *Deps) profileList(ctx context.Context, args *cli.Args) error {
	names, current, err := d.Config.ProfileNames()
	if err != nil {
		return err
	}
	sort.Strings(names)

	rows := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		p, err := d.Config.Profile(name)
		if err != nil {
			return err
		}
		rows = append(rows, map[string]interface{}{
			"name":     name,
			"endpoint": p.Endpoint,
			"region":   p.Region,
			"format":   p.Format,
			"current":  name == current,
		})
	}

	return d.render(args, api.Result{Data: rows}, &output.FormatConfig{
		Columns: []string{"name", "endpoint", "region", "format", "current"},
	})
}

func (d *Deps) profileShow(ctx context.Context, args *cli.Args) error {
	name := args.String("name")
	if name == "" {
		var err error
		if name, err = d.Config.Name(); err != nil {
			return err
		}
	}

	p, err := d.Config.Profile(name)
	if err != nil {
		return err
	}

	row := map[string]interface{}{
		"name":                name,
		"endpoint":            p.Endpoint,
		"auth-token":          p.AuthToken,
		"key":                 p.Key,
		"secret":              p.Secret,
		"region":              p.Region,
		"format":              p.Format,
		"organization-id":     p.OrganizationID,
		"provider-token":      p.ProviderToken,
		"provider-cluster-id": p.ProviderClusterID,
	}
	// Credentials are masked for display only; the file keeps clear text.
	return d.render(args, api.Result{Data: secrets.MaskFields(row)}, nil)
}

func (d *Deps) profileAdd(ctx context.Context, args *cli.Args) error {
	opts := []config.ProfileOption{}
	if region := args.String("region"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if format := args.String("output-fmt"); format != "" {
		opts = append(opts, config.WithFormat(format))
	}
	if key := args.String("key"); key != "" {
		opts = append(opts, config.WithKeySecret(key, args.String("secret")))
	}
	if org := args.String("org"); org != "" {
		opts = append(opts, config.WithOrganization(org))
	}

	name := args.String("name")
	if err := d.Config.AddProfile(name, args.String("endpoint"), opts...); err != nil {
		return err
	}
	d.printf("Profile %q added\n", name)
	return nil
}

func (d *Deps) profileRemove(ctx context.Context, args *cli.Args) error {
	name := args.String("name")
	if err := d.Config.RemoveProfile(name); err != nil {
		return err
	}
	d.printf("Profile %q removed\n", name)
	return nil
}

func (d *Deps) profileUse(ctx context.Context, args *cli.Args) error {
	name := args.String("name")
	if err := d.Config.UseProfile(name); err != nil {
		return err
	}
	d.printf("Switched to profile %q\n", name)
	return nil
}

func (d *Deps) profileSetToken(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}
	if err := d.Config.SetAuthToken(name, args.String("token")); err != nil {
		return err
	}
	d.printf("Token stored on profile %q\n", name)
	return nil
}

func (d *Deps) profileSetOrg(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}
	if err := d.Config.SetOrganizationID(name, args.String("org")); err != nil {
		return err
	}
	d.printf("Organization stored on profile %q\n", name)
	return nil
}

func (d *Deps) profileSetFormat(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}
	if err := d.Config.SetFormat(name, args.String("output-fmt")); err != nil {
		return err
	}
	d.printf("Format stored on profile %q\n", name)
	return nil
}

// targetProfile resolves the --name flag, defaulting to the current profile.
func (d *Deps) targetProfile(args *cli.Args) (string, error) {
	if name := args.String("name"); name != "" {
		return name, nil
	}
	return d.Config.Name()
}
