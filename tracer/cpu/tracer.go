package cpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/lumen/device"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
)

// A tracer that renders blocks on the host CPU. Each tracer owns a worker
// goroutine that processes block requests sequentially; the rows of each
// block are spread over a pool of row workers.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device *device.Device

	// The tracer id.
	id string

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit and a channel that the
	// worker closes once it has exited.
	closeChan chan struct{}
	exitChan  chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Device speed in GFlops.
	speed uint32

	// Number of goroutines used for processing block rows.
	numWorkers int

	// The scene and render target that blocks are rendered with.
	sceneData *scene.Scene
	target    *tracer.RenderTarget
}

// Create a new cpu tracer.
func NewTracer(id string, dev *device.Device, pipeline *Pipeline) (*Tracer, error) {
	if dev == nil {
		return nil, fmt.Errorf("cpu tracer (%s): no device specified", id)
	}
	if pipeline == nil || pipeline.Integrator == nil {
		return nil, fmt.Errorf("cpu tracer (%s): pipeline does not define an integrator stage", id)
	}

	numWorkers := int(dev.ComputeUnits())
	if numWorkers < 1 {
		numWorkers = 1
	}

	tr := &Tracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", dev.Name)),
		device:       dev,
		id:           id,
		blockReqChan: make(chan tracer.BlockRequest, 0),
		updateBuffer: make(map[tracer.UpdateType]interface{}, 0),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
		speed:        dev.Speed,
		numWorkers:   numWorkers,
	}

	return tr, nil
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the computation speed estimate (in GFlops).
func (tr *Tracer) Speed() uint32 {
	return tr.speed
}

// Initialize tracer and start its worker.
func (tr *Tracer) Init() error {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan == nil {
		tr.startWorker()
		tr.logger.Debugf("started worker with %d row workers", tr.numWorkers)
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	closeChan := tr.closeChan
	tr.closeChan = nil
	tr.exitChan = nil
	tr.Unlock()

	// If the worker is running shut it down and wait for it to exit
	if closeChan != nil {
		close(closeChan)
		tr.wg.Wait()
	}

	tr.Lock()
	tr.sceneData = nil
	tr.target = nil
	tr.Unlock()
}

// Enqueue block request. The call blocks until the worker picks up the
// request; requests for a tracer that is not running fail with
// ErrNotInitialized.
func (tr *Tracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	exitChan := tr.exitChan
	tr.Unlock()

	if exitChan == nil {
		tr.logger.Error("block request received while the worker is not running")
		blockReq.ErrChan <- tracer.ErrNotInitialized
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	case <-exitChan:
		blockReq.ErrChan <- tracer.ErrNotInitialized
	}
}

// Append a change to the tracer's update buffer.
func (tr *Tracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()

	tr.updateBuffer[updateType] = data
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *Tracer) commitUpdates() error {
	tr.Lock()
	defer tr.Unlock()

	for updateType, data := range tr.updateBuffer {
		switch updateType {
		case tracer.UpdateScene:
			sc, ok := data.(*scene.Scene)
			if !ok || sc == nil {
				return tracer.ErrNoSceneData
			}
			tr.sceneData = sc
		case tracer.UpdateRenderTarget:
			target, ok := data.(*tracer.RenderTarget)
			if !ok || target == nil || target.Accumulator == nil || target.FrameBuffer == nil {
				return tracer.ErrNoRenderTarget
			}
			tr.target = target
		default:
			return fmt.Errorf("cpu tracer (%s): unsupported update type %d", tr.id, updateType)
		}
	}

	tr.updateBuffer = make(map[tracer.UpdateType]interface{}, 0)
	return nil
}

// Spawn a go-routine to process block render requests.
func (tr *Tracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}

	tr.closeChan = make(chan struct{}, 0)
	tr.exitChan = make(chan struct{}, 0)
	readyChan := make(chan struct{}, 0)
	tr.wg.Add(1)
	go func(closeChan <-chan struct{}, exitChan chan<- struct{}) {
		defer tr.wg.Done()
		defer close(exitChan)
		var blockReq tracer.BlockRequest
		var startTime time.Time
		var err error
		close(readyChan)
		for {
			select {
			case blockReq = <-tr.blockReqChan:
				startTime = time.Now()

				// Apply any pending changes
				if tr.hasPendingUpdates() {
					err = tr.commitUpdates()
					if err != nil {
						blockReq.ErrChan <- err
						continue
					}
					tr.stats.UpdateTime = time.Since(startTime)
					startTime = time.Now()
				}

				// Render block and reply with our completion status
				err = tr.renderBlock(&blockReq)
				if err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				return
			}
		}
	}(tr.closeChan, tr.exitChan)

	// Wait for go-routine to start
	<-readyChan
}

func (tr *Tracer) hasPendingUpdates() bool {
	tr.Lock()
	defer tr.Unlock()
	return len(tr.updateBuffer) != 0
}

// Render block.
func (tr *Tracer) renderBlock(blockReq *tracer.BlockRequest) error {
	var err error

	if tr.sceneData == nil {
		return tracer.ErrNoSceneData
	}
	if tr.target == nil {
		return tracer.ErrNoRenderTarget
	}
	if blockReq.BlockY+blockReq.BlockH > blockReq.FrameH {
		return tracer.ErrInvalidBlock
	}
	acc := tr.target.Accumulator
	bounds := tr.target.FrameBuffer.Bounds()
	if acc.FrameW != blockReq.FrameW || acc.FrameH != blockReq.FrameH ||
		uint32(bounds.Dx()) != blockReq.FrameW || uint32(bounds.Dy()) != blockReq.FrameH {
		return tracer.ErrTargetSizeChange
	}

	// Execute pipeline
	if blockReq.Frame == 0 && tr.pipeline.Reset != nil {
		_, err = tr.pipeline.Reset(tr, blockReq)
		if err != nil {
			return err
		}
	}

	_, err = tr.pipeline.Integrator(tr, blockReq)
	if err != nil {
		return err
	}

	for _, stage := range tr.pipeline.PostProcess {
		_, err = stage(tr, blockReq)
		if err != nil {
			return err
		}
	}

	return nil
}

// Process rows [blockY, blockY+blockH) using the tracer's row workers. Rows
// are handed out one at a time so that expensive rows do not stall a worker.
func (tr *Tracer) forEachRow(blockReq *tracer.BlockRequest, rowFn func(y uint32)) {
	numWorkers := tr.numWorkers
	if numWorkers > int(blockReq.BlockH) {
		numWorkers = int(blockReq.BlockH)
	}

	rowChan := make(chan uint32, blockReq.BlockH)
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		rowChan <- y
	}
	close(rowChan)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for y := range rowChan {
				rowFn(y)
			}
		}()
	}
	wg.Wait()
}
