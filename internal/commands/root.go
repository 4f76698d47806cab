package commands

import (
	"github.com/vantagedata/vantage-cli/internal/cli"
)

// NewRoot assembles the full command tree over one dependency set.
func NewRoot(d *Deps) *cli.Command {
	return cli.Group("vantage", "Vantage control-plane CLI",
		profileTree(d),
		clusterTree(d),
		orgTree(d),
		jobsTree(d),
		loginLeaf(d),
		logoutLeaf(d),
	)
}
