package commands

import (
	"context"
	"net/url"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/config"
	"github.com/vantagedata/vantage-cli/pkg/output"
)

// jobsTree wires the scheduled-jobs subsystem: linking a profile to the
// external jobs provider and checking run status.
func jobsTree(d *Deps) *cli.Command {
	return cli.Group("jobs", "Manage the scheduled-jobs provider linkage",
		cli.Leaf("link", "Link the profile to a jobs provider", []cli.Arg{
			argProfileName,
			{Name: "provider-token", Help: "provider API token", Required: true},
			{Name: "provider-cluster-id", Help: "provider cluster id", Required: true},
		}, d.jobsLink),
		cli.Leaf("unlink", "Remove the provider linkage", []cli.Arg{argProfileName}, d.jobsUnlink),
		cli.Leaf("status", "Show recent scheduled-job runs", []cli.Arg{
			{Name: "limit", Help: "maximum runs to return", Default: "20"},
		}, d.jobsStatus),
	)
}

func (d *Deps) jobsLink(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}

	// Both provider fields change together; persist once.
	err = d.Config.Apply(name, func(p *config.Profile) {
		p.ProviderToken = args.String("provider-token")
		p.ProviderClusterID = args.String("provider-cluster-id")
	})
	if err != nil {
		return err
	}
	d.printf("Profile %q linked to jobs provider cluster %q\n", name, args.String("provider-cluster-id"))
	return nil
}

func (d *Deps) jobsUnlink(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}
	err = d.Config.Apply(name, func(p *config.Profile) {
		p.ProviderToken = ""
		p.ProviderClusterID = ""
	})
	if err != nil {
		return err
	}
	d.printf("Provider linkage removed from profile %q\n", name)
	return nil
}

func (d *Deps) jobsStatus(ctx context.Context, args *cli.Args) error {
	name, err := d.targetProfile(args)
	if err != nil {
		return err
	}
	p, err := d.Config.Profile(name)
	if err != nil {
		return err
	}
	if p.ProviderClusterID == "" {
		d.printf("Profile %q is not linked to a jobs provider; run 'vantage jobs link' first\n", name)
		return ErrReported
	}

	client, err := d.NewClient(args)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("provider_cluster_id", p.ProviderClusterID)
	params.Set("limit", args.String("limit"))

	res := client.Get(ctx, "/api/v1/jobs/runs", params)
	return d.render(args, res, &output.FormatConfig{
		Columns: []string{"id", "job", "status", "started_at", "duration"},
	})
}
