package miniaudio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-tutor/core/audio"
)

// Client owns a miniaudio context with a clocked speech output device and an
// optional capture device used for voice input.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient

	captureErr error
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) { logger.Debug("malgo", "message", message) },
	)
	if err != nil {
		return nil, fmt.Errorf("malgo context initialization failed: %w", err)
	}

	client := Client{
		audioContext: audioCtx,
	}

	if err := client.playbackClient.Init(audioCtx, audio.SpeechSampleRate); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	// Playback stays suspended until the first buffer is scheduled.
	if err := client.captureClient.Init(audioCtx); err != nil {
		client.captureErr = err
		logger.Warn("capture device unavailable", "error", err)
	}

	return &client, nil
}

func (c *Client) Stream(_ context.Context, onAudio func(audio []byte)) error {
	if c.captureErr != nil {
		return c.captureErr
	}
	return c.captureClient.Start(onAudio)
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	return c.Stream(ctx, onAudio)
}

func (c *Client) StopCapture() error {
	if c.captureErr != nil {
		return nil
	}
	return c.captureClient.Stop()
}

func (c *Client) Close() {
	c.playbackClient.ClearScheduled()
	err := errors.Join(c.captureClient.Uninit(), c.playbackClient.Uninit())
	if err != nil {
		logger.Debug("closing audio devices", "error", err)
	}
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

// EncodingInfo describes the capture stream.
func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
