package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame rows proportionally to the speed
// estimate of each tracer.
type naiveScheduler struct {
	blockAssignment []uint32
}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = make([]uint32, len(tracers))
	}

	var total float64 = 0.0
	for _, tr := range tracers {
		total += float64(tr.Speed())
	}

	scaler := float64(frameH) / total
	for idx, tr := range tracers {
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.Speed())*scaler)))
	}

	fixupAssignment(sch.blockAssignment, frameH)
	return sch.blockAssignment
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	naive           naiveScheduler
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// This function returns the block height assignment for each tracer in the
// input list. When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed fall back to the speed estimates
	if len(sch.blockAssignment) != len(tracers) || !hasFrameStats(tracers) {
		sch.blockAssignment = append(sch.blockAssignment[:0], sch.naive.Schedule(tracers, frameH)...)
		return sch.blockAssignment
	}

	// Use last frame statistics
	var total float64 = 0.0
	var stats *Stats
	for _, tr := range tracers {
		stats = tr.Stats()
		total += float64(stats.BlockH) / float64(stats.RenderTime)
	}

	scaler := float64(frameH) / total
	for idx, tr := range tracers {
		stats = tr.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.RenderTime)*scaler)))
	}

	fixupAssignment(sch.blockAssignment, frameH)
	return sch.blockAssignment
}

// Returns true if every tracer has rendered a block before.
func hasFrameStats(tracers []Tracer) bool {
	for _, tr := range tracers {
		stats := tr.Stats()
		if stats == nil || stats.BlockH == 0 || stats.RenderTime <= 0 {
			return false
		}
	}
	return true
}

// Make sure that the assigned rows add up to the frame height. Missing rows
// are appended to the first tracer; excess rows are removed from the largest
// blocks while keeping every block at least one row high.
func fixupAssignment(blockAssignment []uint32, frameH uint32) {
	if len(blockAssignment) == 0 {
		return
	}

	var scheduledRows uint32 = 0
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return
	}

	for excess := scheduledRows - frameH; excess > 0; excess-- {
		largest := 0
		for idx, rows := range blockAssignment {
			if rows > blockAssignment[largest] {
				largest = idx
			}
		}
		if blockAssignment[largest] <= 1 {
			return
		}
		blockAssignment[largest]--
	}
}
