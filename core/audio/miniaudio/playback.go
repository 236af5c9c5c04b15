package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-tutor/core/audio"
)

// playbackClient is a clocked output device. Its clock only advances while
// the device is running, so a stopped device behaves like a suspended audio
// context: scheduled buffers wait until it is resumed.
type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig
	sampleRate   int

	framesRendered atomic.Uint64
	scheduled      []scheduledBuffer

	mu         sync.Mutex
	scheduleMu sync.Mutex
}

type scheduledBuffer struct {
	startFrame uint64
	samples    []float32
}

func (b scheduledBuffer) endFrame() uint64 {
	return b.startFrame + uint64(len(b.samples))
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, sampleRate int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	channels := 1
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.sampleRate = sampleRate
	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = uint32(sampleRate)
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = uint32(sampleRate / 50) // ~20ms of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

// CurrentTime returns the output clock position in seconds.
func (c *playbackClient) CurrentTime() float64 {
	if c.sampleRate == 0 {
		return 0
	}
	return float64(c.framesRendered.Load()) / float64(c.sampleRate)
}

// Suspended reports whether the device is stopped.
func (c *playbackClient) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.device == nil || !c.device.IsStarted()
}

// Resume starts the device if it is not running yet.
func (c *playbackClient) Resume(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}

	return nil
}

// Schedule queues buffer to start at the given output time in seconds. A
// start time already in the past is moved to the current clock position.
func (c *playbackClient) Schedule(buffer *audio.Buffer, at float64) error {
	if buffer == nil || buffer.Frames() == 0 {
		return nil
	}
	if buffer.SampleRate != c.sampleRate {
		return fmt.Errorf("unsupported sample rate %d, device runs at %d", buffer.SampleRate, c.sampleRate)
	}

	startFrame := uint64(math.Round(at * float64(c.sampleRate)))
	if now := c.framesRendered.Load(); startFrame < now {
		startFrame = now
	}

	c.scheduleMu.Lock()
	defer c.scheduleMu.Unlock()
	c.scheduled = append(c.scheduled, scheduledBuffer{startFrame: startFrame, samples: buffer.Samples})
	return nil
}

// ClearScheduled drops everything that has not finished playing yet.
func (c *playbackClient) ClearScheduled() {
	c.scheduleMu.Lock()
	defer c.scheduleMu.Unlock()
	c.scheduled = nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	c.device.Uninit()
	c.device = nil

	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		from := c.framesRendered.Load()
		c.mix(pOutput, from, int(frameCount), bytesPerFrame)
		c.framesRendered.Add(uint64(frameCount))
	}
}

// mix renders frameCount frames starting at absolute frame from into out and
// forgets buffers that finished playing.
func (c *playbackClient) mix(out []byte, from uint64, frameCount int, bytesPerFrame int) {
	to := from + uint64(frameCount)
	mixed := make([]float32, frameCount)

	c.scheduleMu.Lock()
	remaining := c.scheduled[:0]
	for _, buffer := range c.scheduled {
		if buffer.endFrame() <= from {
			continue
		}
		remaining = append(remaining, buffer)
		if buffer.startFrame >= to {
			continue
		}

		start := max(buffer.startFrame, from)
		end := min(buffer.endFrame(), to)
		for frame := start; frame < end; frame++ {
			mixed[frame-from] += buffer.samples[frame-buffer.startFrame]
		}
	}
	c.scheduled = remaining
	c.scheduleMu.Unlock()

	for i, sample := range mixed {
		if i*bytesPerFrame+4 > len(out) {
			break
		}
		sample = max(-1, min(1, sample))
		binary.LittleEndian.PutUint32(out[i*bytesPerFrame:], math.Float32bits(sample))
	}
}
