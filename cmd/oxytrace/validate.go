package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Carmen-Shannon/oxy-trace/engine/kernel"
)

// Validate the kernel and print its binding contract.
func validateKernel(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg.LogLevel)
	if err != nil {
		return err
	}

	k, err := kernel.Validate(cfg.TileSize)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Group", "Binding", "Name", "Type", "Kind", "Min size"})
	for _, b := range k.Bindings() {
		table.Append([]string{
			fmt.Sprintf("%d", b.Group),
			fmt.Sprintf("%d", b.Binding),
			b.Name,
			b.TypeName,
			b.Kind.String(),
			fmt.Sprintf("%d", b.MinSize),
		})
	}
	wg := k.WorkgroupSize()
	table.SetFooter([]string{"", "", "", "", "WORKGROUP", fmt.Sprintf("%dx%dx%d", wg[0], wg[1], wg[2])})
	table.Render()

	logger.Noticef("kernel %q is valid for tile %d", k.EntryPoint(), cfg.TileSize)
	return nil
}
