package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
)

// Print the tables the extractor builds for a scene.
func inspectScene(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg.LogLevel)
	if err != nil {
		return err
	}

	s, _, err := loadScene(cfg.Scene)
	if err != nil {
		return err
	}
	extractor := raytracer.NewExtractor()
	if _, err := extractor.Extract(s.Publish()); err != nil {
		return err
	}
	printTables(ctx.App.Writer, extractor.Tables())
	return nil
}

func printTables(w io.Writer, t *raytracer.Tables) {
	meshes := newTable(w, "Mesh", "Vertex base", "Index offset", "Index count")
	for _, id := range t.MeshOrder {
		r := t.Meshes[id]
		meshes.Append([]string{fmt.Sprint(id), fmt.Sprint(r.VertexBase), fmt.Sprint(r.IndexOffset), fmt.Sprint(r.IndexCount)})
	}
	meshes.SetFooter([]string{"TOTAL", fmt.Sprintf("%d vertices", len(t.Vertices)), "", fmt.Sprintf("%d indices", len(t.Indices))})
	meshes.Render()

	materials := newTable(w, "Slot", "Material", "Base color", "Roughness", "Metallic")
	for slot, id := range t.MaterialOrder {
		m := t.Materials[slot]
		materials.Append([]string{fmt.Sprint(slot), fmt.Sprint(id), fmt.Sprintf("%.2f", m.BaseColor), fmt.Sprintf("%.2f", m.Roughness), fmt.Sprintf("%.2f", m.Metallic)})
	}
	materials.Render()

	instances := newTable(w, "Instance", "Index offset", "Index count", "Material slot", "Translation")
	for i, inst := range t.Instances {
		instances.Append([]string{
			fmt.Sprint(i),
			fmt.Sprint(inst.IndexOffset),
			fmt.Sprint(inst.IndexCount),
			fmt.Sprint(inst.Material),
			fmt.Sprintf("%.2f", inst.Transform[12:15]),
		})
	}
	instances.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	return table
}
