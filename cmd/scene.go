package cmd

import (
	"bytes"
	"fmt"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/scene/reader"
	"github.com/achilleasa/lumen/scene/writer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Load the scene named by the first command argument. The argument may be
// the name of a built-in scene or a path/URL to a scene file; if omitted,
// the default built-in scene is used.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	if ctx.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one scene argument; got %d", ctx.NArg())
	}

	sceneArg := ctx.Args().First()
	if sceneArg == "" {
		sceneArg = scene.DefaultSceneName
	}

	for _, name := range scene.BuiltinNames() {
		if name == sceneArg {
			logger.Infof("using built-in scene %q", name)
			return scene.Builtin(name)
		}
	}

	return reader.ReadScene(sceneArg)
}

// Display scene contents and optionally export the scene in text format.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Type", "Geometry", "Diffuse", "Specular", "Glossiness", "Emission"})
	for index, prim := range sc.Primitives {
		var geometry string
		switch prim.Type {
		case scene.SpherePrimitive:
			geometry = fmt.Sprintf("origin %s radius %3.3f", formatVec3(prim.Origin), prim.Radius)
		case scene.PlanePrimitive:
			geometry = fmt.Sprintf("normal %s dist %3.3f", formatVec3(prim.Normal), prim.Dist)
		}

		table.Append([]string{
			fmt.Sprintf("%d", index),
			prim.Type.String(),
			geometry,
			formatVec3(prim.Material.Diffuse),
			formatVec3(prim.Material.Specular),
			fmt.Sprintf("%3.1f", prim.Material.Glossiness),
			formatVec3(prim.Material.Emission),
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "BUILT-IN", fmt.Sprintf("%v", scene.BuiltinNames())})
	table.Render()

	logger.Noticef(
		"scene %q: %d spheres, %d planes\ncamera: %s\n%s",
		sc.Name, sc.Count(scene.SpherePrimitive), sc.Count(scene.PlanePrimitive), sc.Camera.String(), buf.String(),
	)

	if outFile := ctx.String("out"); outFile != "" {
		return writer.WriteScene(sc, outFile)
	}
	return nil
}

func formatVec3(v [3]float32) string {
	return fmt.Sprintf("(%3.2f, %3.2f, %3.2f)", v[0], v[1], v[2])
}
