package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

type textSceneReader struct {
	// The parsed scene.
	sceneGraph *scene.Scene

	// Defined materials by name.
	materials map[string]*scene.Material

	// Material assigned to new primitives; nil until a material is
	// defined or selected.
	curMaterial *scene.Material

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new text scene reader.
func newTextSceneReader(name string) *textSceneReader {
	return &textSceneReader{
		sceneGraph: scene.NewScene(name),
		materials:  make(map[string]*scene.Material, 0),
		errStack:   make([]string, 0),
	}
}

// Generate an error message that also includes any data in the error stack.
func (r *textSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return fmt.Errorf("%s", strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *textSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *textSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the material for new primitives, creating a grey default material if
// none has been selected.
func (r *textSceneReader) activeMaterial() scene.Material {
	if r.curMaterial == nil {
		mat, exists := r.materials[""]
		if !exists {
			mat = &scene.Material{Diffuse: types.Splat3(0.7)}
			r.materials[""] = mat
		}
		r.curMaterial = mat
	}
	return *r.curMaterial
}

// Parse scene directives from a resource.
func (r *textSceneReader) parse(res *resource) error {
	var lineNum int = 0

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		var err error
		switch lineTokens[0] {
		case "call":
			err = r.parseInclude(res, lineNum, lineTokens)
			if err != nil {
				// Include errors are already decorated
				return err
			}
			continue
		case "material":
			err = r.parseMaterial(lineTokens)
		case "diffuse", "specular", "emission", "glossiness":
			err = r.parseMaterialParam(lineTokens)
		case "usemtl":
			if len(lineTokens) != 2 {
				err = fmt.Errorf("unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
				break
			}

			mat, exists := r.materials[lineTokens[1]]
			if !exists {
				err = fmt.Errorf("undefined material with name '%s'", lineTokens[1])
				break
			}
			r.curMaterial = mat
		case "sphere":
			var v types.Vec4
			if v, err = parseVec4(lineTokens); err == nil {
				err = r.sceneGraph.AddPrimitive(
					scene.NewSphere(types.Vec3{v[0], v[1], v[2]}, v[3], r.activeMaterial()),
				)
			}
		case "plane":
			var v types.Vec4
			if v, err = parseVec4(lineTokens); err == nil {
				err = r.sceneGraph.AddPrimitive(
					scene.NewPlane(types.Vec3{v[0], v[1], v[2]}, v[3], r.activeMaterial()),
				)
			}
		case "camera_aperture":
			var v float32
			if v, err = parseFloat32(lineTokens); err == nil {
				if v < 0 {
					err = fmt.Errorf("camera aperture must be >= 0; got %f", v)
					break
				}
				r.sceneGraph.Camera.ApertureSize = v
			}
		case "camera_focal_plane":
			var v float32
			if v, err = parseFloat32(lineTokens); err == nil {
				if v <= 0 {
					err = fmt.Errorf("camera focal plane must be > 0; got %f", v)
					break
				}
				r.sceneGraph.Camera.FocalPlane = v
			}
		default:
			err = fmt.Errorf("unsupported directive '%s'", lineTokens[0])
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}

	return nil
}

// Parse and process a 'call' directive.
func (r *textSceneReader) parseInclude(res *resource, lineNum int, lineTokens []string) error {
	if len(lineTokens) != 2 {
		return r.emitError(res.Path(), lineNum, "unsupported syntax for 'call'; expected 1 argument; got %d", len(lineTokens)-1)
	}

	r.pushFrame(fmt.Sprintf("referenced from %s:%d [call]", res.Path(), lineNum))

	incRes, err := newResource(lineTokens[1], res)
	if err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	defer incRes.Close()

	logger.Debugf("including scene file %s", incRes.Path())
	if err = r.parse(incRes); err != nil {
		return err
	}

	r.popFrame()
	return nil
}

// Parse a 'material name' directive. Redefining an existing material is an error.
func (r *textSceneReader) parseMaterial(lineTokens []string) error {
	if len(lineTokens) != 2 {
		return fmt.Errorf("unsupported syntax for 'material'; expected 1 argument; got %d", len(lineTokens)-1)
	}

	matName := lineTokens[1]
	if _, exists := r.materials[matName]; exists {
		return fmt.Errorf("material '%s' already defined", matName)
	}

	mat := &scene.Material{}
	r.materials[matName] = mat
	r.curMaterial = mat
	return nil
}

// Parse a parameter of the current material.
func (r *textSceneReader) parseMaterialParam(lineTokens []string) error {
	if r.curMaterial == nil {
		return fmt.Errorf("'%s' must follow a 'material' directive", lineTokens[0])
	}

	var err error
	switch lineTokens[0] {
	case "diffuse":
		r.curMaterial.Diffuse, err = parseVec3(lineTokens)
	case "specular":
		r.curMaterial.Specular, err = parseVec3(lineTokens)
	case "emission":
		r.curMaterial.Emission, err = parseVec3(lineTokens)
	case "glossiness":
		var v float32
		if v, err = parseFloat32(lineTokens); err == nil {
			if v < 0 {
				return fmt.Errorf("glossiness must be >= 0; got %f", v)
			}
			r.curMaterial.Glossiness = v
		}
	}
	return err
}

// Parse a float32 row.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) != 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	v := types.Vec3{}
	if len(lineTokens) != 4 {
		return v, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse a Vec4 row.
func parseVec4(lineTokens []string) (types.Vec4, error) {
	v := types.Vec4{}
	if len(lineTokens) != 5 {
		return v, fmt.Errorf("unsupported syntax for '%s'; expected 4 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	for tokIdx := 1; tokIdx <= 4; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
