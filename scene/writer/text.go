// Package writer serializes scenes to the text format understood by the
// reader package.
package writer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

var logger = log.New("writer")

// Write scene definition to a text file.
func WriteScene(sc *scene.Scene, sceneFile string) error {
	logger.Noticef("writing scene to %s", sceneFile)
	start := time.Now()

	f, err := os.Create(sceneFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = Write(sc, f); err != nil {
		return err
	}

	logger.Infof("wrote scene in %s", time.Since(start))
	return f.Close()
}

// Write scene definition to w. Identical materials are emitted once and
// shared by all primitives that use them.
func Write(sc *scene.Scene, w io.Writer) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# scene %s\n", sc.Name)

	// Collect distinct materials in primitive order
	materials := make([]scene.Material, 0)
	primMaterial := make([]int, len(sc.Primitives))
	for primIndex, prim := range sc.Primitives {
		matIndex := -1
		for index, mat := range materials {
			if mat == prim.Material {
				matIndex = index
				break
			}
		}
		if matIndex == -1 {
			materials = append(materials, prim.Material)
			matIndex = len(materials) - 1
		}
		primMaterial[primIndex] = matIndex
	}

	for index, mat := range materials {
		fmt.Fprintf(bw, "\nmaterial %s\n", materialName(index))
		fmt.Fprintf(bw, "diffuse %s\n", formatVec3(mat.Diffuse))
		fmt.Fprintf(bw, "specular %s\n", formatVec3(mat.Specular))
		fmt.Fprintf(bw, "glossiness %s\n", formatFloat(mat.Glossiness))
		fmt.Fprintf(bw, "emission %s\n", formatVec3(mat.Emission))
	}

	bw.WriteString("\n")
	curMaterial := -1
	for primIndex, prim := range sc.Primitives {
		if primMaterial[primIndex] != curMaterial {
			curMaterial = primMaterial[primIndex]
			fmt.Fprintf(bw, "usemtl %s\n", materialName(curMaterial))
		}

		switch prim.Type {
		case scene.SpherePrimitive:
			fmt.Fprintf(bw, "sphere %s %s\n", formatVec3(prim.Origin), formatFloat(prim.Radius))
		case scene.PlanePrimitive:
			fmt.Fprintf(bw, "plane %s %s\n", formatVec3(prim.Normal), formatFloat(prim.Dist))
		}
	}

	fmt.Fprintf(bw, "\ncamera_aperture %s\n", formatFloat(sc.Camera.ApertureSize))
	fmt.Fprintf(bw, "camera_focal_plane %s\n", formatFloat(sc.Camera.FocalPlane))

	return bw.Flush()
}

func materialName(index int) string {
	return fmt.Sprintf("mat%02d", index)
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func formatVec3(v types.Vec3) string {
	return formatFloat(v[0]) + " " + formatFloat(v[1]) + " " + formatFloat(v[2])
}
