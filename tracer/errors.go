package tracer

import "errors"

var (
	ErrNoSceneData      = errors.New("tracer: no scene data uploaded")
	ErrNoRenderTarget   = errors.New("tracer: no render target attached")
	ErrNotInitialized   = errors.New("tracer: tracer is not initialized")
	ErrInvalidBlock     = errors.New("tracer: block request exceeds frame bounds")
	ErrTargetSizeChange = errors.New("tracer: render target does not match the requested frame size")
)
