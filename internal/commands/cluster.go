package commands

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vantagedata/vantage-cli/internal/cli"
	"github.com/vantagedata/vantage-cli/pkg/api"
	"github.com/vantagedata/vantage-cli/pkg/filter"
	"github.com/vantagedata/vantage-cli/pkg/output"
)

// argClusterID is shared by every cluster leaf operating on one cluster.
var argClusterID = cli.Arg{Name: "cluster-id", Shorthand: "c", Help: "cluster id", Required: true}

// clusterColumns is the narrow column set for cluster listings; wide output
// adds the rest.
var clusterColumns = []string{"id", "name", "status", "size", "region"}

// clusterTransforms converts raw API units for display.
var clusterTransforms = map[string]output.Transform{
	"storage_bytes":  output.HumanBytes,
	"cost_cents":     output.CentsToDollars,
	"provider_token": output.Redact,
}

func clusterTree(d *Deps) *cli.Command {
	return cli.Group("cluster", "Manage clusters",
		cli.Leaf("list", "List clusters", []cli.Arg{
			{Name: "org", Help: "organization id (defaults to the profile's)"},
			{Name: "filter", Help: `row filter expression, e.g. 'status == "RUNNING"'`},
		}, d.clusterList),
		cli.Leaf("get", "Show one cluster", []cli.Arg{argClusterID}, d.clusterGet),
		cli.Leaf("deploy", "Deploy a new cluster", []cli.Arg{
			{Name: "name", Shorthand: "n", Help: "cluster name", Required: true},
			{Name: "size", Help: "node count", Default: "1"},
			{Name: "tier", Help: "service tier", Choices: []string{"basic", "standard", "premium"}},
			{Name: "org", Help: "organization id (defaults to the profile's)"},
		}, d.clusterDeploy),
		cli.Leaf("scale", "Change a cluster's node count", []cli.Arg{
			argClusterID,
			{Name: "size", Help: "new node count", Required: true},
		}, d.clusterScale),
		cli.Leaf("upgrade", "Upgrade a cluster to the latest release", []cli.Arg{argClusterID}, d.clusterUpgrade),
		cli.Leaf("suspend", "Suspend a running cluster", []cli.Arg{argClusterID}, d.clusterSuspend),
		cli.Leaf("resume", "Resume a suspended cluster", []cli.Arg{argClusterID}, d.clusterResume),
		cli.Leaf("expand-storage", "Expand a cluster's storage", []cli.Arg{
			argClusterID,
			{Name: "bytes", Help: "additional storage in bytes", Required: true},
		}, d.clusterExpandStorage),
		cli.Leaf("delete", "Delete a cluster", []cli.Arg{
			argClusterID,
			{Name: "yes", Shorthand: "y", Help: "skip the confirmation prompt", Bool: true},
		}, d.clusterDelete),
		cli.Leaf("logs", "Show cluster logs", []cli.Arg{
			argClusterID,
			{Name: "follow", Shorthand: "f", Help: "stream logs until interrupted", Bool: true},
		}, d.clusterLogs),
	)
}

func clusterPath(id string) string {
	return "/api/v1/clusters/" + id
}

func (d *Deps) clusterList(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}

	params := url.Values{}
	org := args.String("org")
	if org == "" {
		if org, err = d.Config.Organization(); err != nil {
			return err
		}
	}
	if org != "" {
		params.Set("organization_id", org)
	}

	res := client.Get(ctx, "/api/v1/clusters", params)
	if res.OK() && args.String("filter") != "" {
		f, err := filter.Compile(args.String("filter"))
		if err != nil {
			return err
		}
		res.Data = f.Apply(res.Data)
		res.Raw = nil
	}

	return d.render(args, res, &output.FormatConfig{
		Columns:    clusterColumns,
		Transforms: clusterTransforms,
	})
}

func (d *Deps) clusterGet(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	res := client.Get(ctx, clusterPath(args.String("cluster-id")), nil)
	return d.render(args, res, &output.FormatConfig{Transforms: clusterTransforms})
}

func (d *Deps) clusterDeploy(ctx context.Context, args *cli.Args) error {
	org := args.String("org")
	if org == "" {
		var err error
		if org, err = d.Config.Organization(); err != nil {
			return err
		}
	}

	body := map[string]interface{}{
		"name": args.String("name"),
		"size": args.String("size"),
	}
	if tier := args.String("tier"); tier != "" {
		body["tier"] = tier
	}
	if org != "" {
		body["organization_id"] = org
	}

	return d.mutateAndWait(ctx, args, "DEPLOY", func(client *api.Client) (string, api.Result) {
		res := client.Post(ctx, "/api/v1/clusters", nil, body)
		return clusterIDFrom(res), res
	})
}

func (d *Deps) clusterScale(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")
	body := map[string]interface{}{"size": args.String("size")}
	return d.mutateAndWait(ctx, args, "SCALE", func(client *api.Client) (string, api.Result) {
		return id, client.Put(ctx, clusterPath(id)+"/scale", nil, body)
	})
}

func (d *Deps) clusterUpgrade(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")
	return d.mutateAndWait(ctx, args, "UPGRADE", func(client *api.Client) (string, api.Result) {
		return id, client.Post(ctx, clusterPath(id)+"/upgrade", nil, nil)
	})
}

func (d *Deps) clusterSuspend(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")
	return d.mutateAndWait(ctx, args, "SUSPEND", func(client *api.Client) (string, api.Result) {
		return id, client.Post(ctx, clusterPath(id)+"/suspend", nil, nil)
	})
}

func (d *Deps) clusterResume(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")
	return d.mutateAndWait(ctx, args, "RESUME", func(client *api.Client) (string, api.Result) {
		return id, client.Post(ctx, clusterPath(id)+"/resume", nil, nil)
	})
}

func (d *Deps) clusterExpandStorage(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")
	body := map[string]interface{}{"bytes": args.String("bytes")}
	return d.mutateAndWait(ctx, args, "STORAGE_EXPAND", func(client *api.Client) (string, api.Result) {
		return id, client.Post(ctx, clusterPath(id)+"/storage", nil, body)
	})
}

func (d *Deps) clusterDelete(ctx context.Context, args *cli.Args) error {
	id := args.String("cluster-id")

	if !args.Bool("yes") {
		ok, err := d.Confirm(fmt.Sprintf("Delete cluster %q? This cannot be undone.", id))
		if err != nil {
			return err
		}
		if !ok {
			d.printf("Deletion of cluster %q canceled\n", id)
			return nil
		}
	}

	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	res := client.Delete(ctx, clusterPath(id), nil)
	if !res.OK() {
		return d.render(args, res, nil)
	}
	d.printf("Cluster %q deleted\n", id)
	return nil
}

func (d *Deps) clusterLogs(ctx context.Context, args *cli.Args) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}
	id := args.String("cluster-id")

	if !args.Bool("follow") {
		res := client.Get(ctx, clusterPath(id)+"/logs", nil)
		return d.render(args, res, nil)
	}

	stream, err := client.StreamLogs(ctx, id)
	if err != nil {
		return err
	}

	// The watcher owns Close. Canceling on return guarantees it fires and
	// exits even when the stream ends on its own, not just on interrupt.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-streamCtx.Done()
		_ = stream.Close()
	}()

	for {
		line, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if stream.Ended(err) {
				return nil
			}
			return fmt.Errorf("log stream ended: %w", err)
		}
		fmt.Fprintln(d.Stdout, line)
	}
}

// mutateAndWait fires a mutating cluster call, polls the resulting operation
// to a terminal state, then re-fetches and renders the cluster's current
// state regardless of how the poll ended.
func (d *Deps) mutateAndWait(ctx context.Context, args *cli.Args, opType string, fire func(*api.Client) (string, api.Result)) error {
	client, err := d.NewClient(args)
	if err != nil {
		return err
	}

	id, res := fire(client)
	if !res.OK() {
		return d.render(args, res, nil)
	}
	if id == "" {
		return fmt.Errorf("response carried no cluster id")
	}

	d.NewPoller(client).Wait(ctx, id, opType)

	final := client.Get(ctx, clusterPath(id), nil)
	return d.render(args, final, &output.FormatConfig{Transforms: clusterTransforms})
}

// clusterIDFrom pulls the cluster id out of a mutation response.
func clusterIDFrom(res api.Result) string {
	body, ok := res.Data.(map[string]interface{})
	if !ok {
		return ""
	}
	if id, ok := body["id"].(string); ok {
		return id
	}
	if id, ok := body["cluster_id"].(string); ok {
		return id
	}
	return ""
}
