package renderer

import "time"

type TracerStat struct {
	// The tracer id.
	Id string `json:"id"`

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32  `json:"block_h"`
	FramePercent float32 `json:"frame_percent"`

	// Render time for assigned block
	RenderTime time.Duration `json:"render_time"`
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat `json:"tracers"`

	// Number of samples accumulated after rendering the frame.
	SampleCount uint32 `json:"sample_count"`

	// Total render time for entire frame.
	RenderTime time.Duration `json:"render_time"`

	// Pixel samples processed per second.
	SamplesPerSecond float64 `json:"samples_per_second"`
}
