package renderer

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"time"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/labstack/echo/v4"
)

const (
	// Time allowed for in-flight preview requests when shutting down.
	shutdownTimeout = 5 * time.Second
)

// An interactive renderer that keeps accumulating samples and exposes the
// progressive result over http.
type interactiveRenderer struct {
	*defaultRenderer

	server *echo.Echo

	// Wakes up the render loop after a reset or camera change.
	wakeChan chan struct{}
}

type cameraUpdate struct {
	ApertureSize *float32 `json:"aperture_size"`
	FocalPlane   *float32 `json:"focal_plane"`
}

// Create a new interactive renderer using the specified block scheduler. The
// preview server listens on opts.ListenAddr while Render is running.
func NewInteractive(sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	base, err := NewDefault(sc, scheduler, opts)
	if err != nil {
		return nil, err
	}

	return newInteractiveRenderer(base.(*defaultRenderer)), nil
}

func newInteractiveRenderer(base *defaultRenderer) *interactiveRenderer {
	r := &interactiveRenderer{
		defaultRenderer: base,
		wakeChan:        make(chan struct{}, 1),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/frame.png", r.getFrame)
	e.GET("/stats", r.getStats)
	e.POST("/reset", r.postReset)
	e.POST("/camera", r.postCamera)
	r.server = e

	return r
}

// Render frames and serve previews until the context is cancelled, in which
// case ErrInterrupted is returned. Once the configured number of samples has
// been accumulated the renderer idles until a reset is requested.
func (r *interactiveRenderer) Render(ctx context.Context) error {
	serverErrChan := make(chan error, 1)
	go func() {
		r.logger.Noticef("serving preview at http://%s/frame.png", r.options.ListenAddr)
		if err := r.server.Start(r.options.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()
	defer r.shutdownServer()

	for {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		case err := <-serverErrChan:
			return err
		default:
		}

		if r.options.NumFrames != 0 && r.SampleCount() >= r.options.NumFrames {
			select {
			case <-ctx.Done():
				return ErrInterrupted
			case err := <-serverErrChan:
				return err
			case <-r.wakeChan:
			}
			continue
		}

		if err := r.RenderFrame(); err != nil {
			return err
		}
	}
}

func (r *interactiveRenderer) shutdownServer() {
	ctx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFn()

	if err := r.server.Shutdown(ctx); err != nil {
		r.logger.Warningf("error shutting down preview server: %s", err.Error())
	}
}

// Discard accumulated samples and wake up the render loop.
func (r *interactiveRenderer) Reset() {
	r.defaultRenderer.Reset()
	r.wake()
}

func (r *interactiveRenderer) wake() {
	select {
	case r.wakeChan <- struct{}{}:
	default:
	}
}

// Apply camera changes and restart accumulation.
func (r *interactiveRenderer) updateCamera(update cameraUpdate) {
	r.Lock()

	camera := *r.scene.Camera
	if update.ApertureSize != nil {
		camera.ApertureSize = *update.ApertureSize
	}
	if update.FocalPlane != nil {
		camera.FocalPlane = *update.FocalPlane
	}

	scCopy := *r.scene
	scCopy.Camera = &camera
	r.scene = &scCopy

	for _, tr := range r.tracers {
		tr.Update(tracer.UpdateScene, r.scene)
	}

	r.accumulatedSamples = 0
	r.Unlock()

	r.logger.Infof("camera updated: %s", camera.String())
	r.wake()
}

func (r *interactiveRenderer) getFrame(c echo.Context) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.FrameBuffer()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (r *interactiveRenderer) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, r.Stats())
}

func (r *interactiveRenderer) postReset(c echo.Context) error {
	r.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (r *interactiveRenderer) postCamera(c echo.Context) error {
	var update cameraUpdate
	if err := c.Bind(&update); err != nil {
		return err
	}

	if (update.ApertureSize != nil && *update.ApertureSize < 0) ||
		(update.FocalPlane != nil && *update.FocalPlane <= 0) {
		return echo.NewHTTPError(http.StatusBadRequest, "aperture_size must be >= 0 and focal_plane must be > 0")
	}

	r.updateCamera(update)
	return c.JSON(http.StatusOK, map[string]float32{
		"aperture_size": r.currentCamera().ApertureSize,
		"focal_plane":   r.currentCamera().FocalPlane,
	})
}

func (r *interactiveRenderer) currentCamera() scene.Camera {
	r.Lock()
	defer r.Unlock()

	return *r.scene.Camera
}
