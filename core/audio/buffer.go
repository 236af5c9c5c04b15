package audio

import (
	"encoding/binary"
	"time"
)

// Buffer is decoded mono audio ready for playback. Samples are normalized to
// the [-1, 1) range.
type Buffer struct {
	SampleRate int
	Samples    []float32
}

// Frames returns the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Duration returns the playback length of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// DurationTime is [Buffer.Duration] as a [time.Duration].
func (b *Buffer) DurationTime() time.Duration {
	return time.Duration(b.Duration() * float64(time.Second))
}

// DecodeLinear16 converts raw little-endian signed 16-bit mono PCM into a
// normalized float buffer. A trailing odd byte is ignored. Empty input yields
// a nil buffer.
func DecodeLinear16(data []byte, sampleRate int) *Buffer {
	frames := len(data) / 2
	if frames == 0 {
		return nil
	}

	samples := make([]float32, frames)
	for i := range samples {
		sample := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(sample) / 32768.0
	}

	return &Buffer{SampleRate: sampleRate, Samples: samples}
}

func audioLen(audio [][]byte) int {
	chunksTotalLength := 0
	for _, audioChunk := range audio {
		chunksTotalLength += len(audioChunk)
	}
	return chunksTotalLength
}

// Duration returns how long raw chunks in the given encoding take to play.
func Duration(audio [][]byte, encodingInfo EncodingInfo) time.Duration {
	if encodingInfo.SampleRate == 0 || encodingInfo.Format.ByteSize() <= 0 {
		return 0
	}
	return time.Duration(float64(audioLen(audio)) / float64(encodingInfo.SampleRate) * float64(time.Second) / float64(encodingInfo.Format.ByteSize()))
}
