package core

import (
	"sync"

	"github.com/softglow/lantern/engine/containers"
)

const frameSampleCount = 30

type MetricsState struct {
	samples            *containers.RingQueue[float64]
	sampleSum          float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

var onceMetrics sync.Once
var metricsState *MetricsState

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{
			samples: containers.NewRingQueue[float64](frameSampleCount),
		}
	})
	return nil
}

// MetricsUpdate folds one frame's elapsed seconds into the rolling
// window and the per-second FPS counter.
func MetricsUpdate(frameElapsedTime float64) {
	frameMS := frameElapsedTime * 1000.0

	if metricsState.samples.IsFull() {
		evicted, err := metricsState.samples.Dequeue()
		if err == nil {
			metricsState.sampleSum -= evicted
		}
	}
	if err := metricsState.samples.Enqueue(frameMS); err == nil {
		metricsState.sampleSum += frameMS
	}
	if n := metricsState.samples.Len(); n > 0 {
		metricsState.msAvg = metricsState.sampleSum / float64(n)
	}

	// Frames per wall-clock second.
	metricsState.accumulatedFrameMS += frameMS
	if metricsState.accumulatedFrameMS > 1000 {
		metricsState.fps = float64(metricsState.frames)
		metricsState.accumulatedFrameMS -= 1000
		metricsState.frames = 0
	}
	metricsState.frames++
}

func MetricsFPS() float64 {
	return metricsState.fps
}

func MetricsFrameTime() float64 {
	return metricsState.msAvg
}

func MetricsFrame() (float64, float64) {
	return metricsState.fps, metricsState.msAvg
}
