// Package reader loads scenes from text files or http(s) URLs.
//
// Scene files contain one directive per line; blank lines and lines
// starting with '#' are ignored:
//
//	material name            define a material and make it current
//	diffuse r g b            set the diffuse albedo of the current material
//	specular r g b           set the specular color of the current material
//	glossiness n             set the phong exponent of the current material
//	emission r g b           set the emitted radiance of the current material
//	usemtl name              select a previously defined material
//	sphere x y z radius      add a sphere using the current material
//	plane nx ny nz dist      add a plane using the current material
//	camera_aperture size     set the lens aperture
//	camera_focal_plane dist  set the distance to the plane in focus
//	call path                include another scene file
//
// Relative include paths are resolved against the including file.
package reader

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
)

var logger = log.New("reader")

// Read a scene from a local file or an http(s) URL.
func ReadScene(pathToScene string) (*scene.Scene, error) {
	res, err := newResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	logger.Noticef("parsing scene from %s", res.Path())
	start := time.Now()

	r := newTextSceneReader(sceneName(res))
	if err = r.parse(res); err != nil {
		return nil, err
	}

	sc := r.sceneGraph
	if err = sc.Validate(); err != nil {
		return nil, err
	}

	logger.Infof(
		"parsed scene with %d spheres and %d planes in %s",
		sc.Count(scene.SpherePrimitive), sc.Count(scene.PlanePrimitive), time.Since(start),
	)
	return sc, nil
}

// Derive a scene name from the resource path by stripping its extension.
func sceneName(res *resource) string {
	base := filepath.Base(res.url.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
