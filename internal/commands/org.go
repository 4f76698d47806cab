package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/output"
)

// orgListQuery fetches organizations through the GraphQL endpoint.
const orgListQuery = `query Organizations($limit: Int!) {
  organizations(limit: $limit) {
    id
    name
    tier
    clusters
  }
}`

var argOrgID = cli.Arg{Name: "org-id", Shorthand: "o", Help: "organization id", Required: true}

func orgTree(d *Deps) *cli.Command {
	return cli.Group("org", "Manage organizations",
		cli.Leaf("list", "List organizations", []cli.Arg{
			{Name: "limit", Help: "maximum entries to return", Default: "100"},
		}, d.orgList),
		cli.Leaf("get", "Show one organization", []cli.Arg{argOrgID}, d.orgGet),
		cli.Leaf("create", "Create an organization", []cli.Arg{
			{Name: "name", Shorthand: "n", Help: "organization name", Required: true},
			{Name: "tier", Help: "billing tier", Choices: []string{"free", "team", "enterprise"}},
		}, d.orgCreate),
		cli.Leaf("delete", "Delete an organization", []cli.Arg{
			argOrgID,
			{Name: "yes", Shorthand: "y", Help: "skip the confirmation prompt", Bool: true},
		}, d.orgDelete),
	)
}

func (d *Deps) orgList(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}

	limit, err := strconv.Atoi(args.String("limit"))
	if err != nil {
		return fmt.Errorf("limit must be a number: %w", err)
	}

	res := client.GraphQL(ctx, orgListQuery, map[string]interface{}{
		"limit": limit,
	})
	if res.OK() {
		// Unwrap the query payload so listings render as rows.
		if envelope, ok := res.Data.(map[string]interface{}); ok {
			res.Data = envelope["organizations"]
		}
	}
	return d.render(args, res, &output.FormatConfig{
		Columns: []string{"id", "name", "tier", "clusters"},
	})
}

func (d *Deps) orgGet(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	res := client.Get(ctx, "/api/v1/orgs/"+args.String("org-id"), nil)
	return d.render(args, res, nil)
}

func (d *Deps) orgCreate(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	body := map[string]interface{}{"name": args.String("name")}
	if tier := args.String("tier"); tier != "" {
		body["tier"] = tier
	}
	res := client.Post(ctx, "/api/v1/orgs", nil, body)
	return d.render(args, res, nil)
}

func (d *Deps) orgDelete(ctx context.Context, args *cli.Args) error {
	id := args.String("org-id")

	if !args.Bool("yes") {
		ok, err := d.Confirm(fmt.Sprintf("Delete organization %q and all its clusters?", id))
		if err != nil {
			return err
		}
		if !ok {
			d.printf("Deletion of organization %q canceled\n", id)
			return nil
		}
	}

	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	res := client.Delete(ctx, "/api/v1/orgs/"+id, nil)
	if !res.OK() {
		return d.render(args, res, nil)
	}
	d.printf("Organization %q deleted\n", id)
	return nil
}
