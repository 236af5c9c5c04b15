package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-tutor/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Transcribe opens a listen stream. Audio sent through the returned stream is
// transcribed until StopStream, after which the accumulated final transcript
// is handed to the transcription callback.
func (c *TranscriptionClient) Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) (speechtotext.Stream, error) {
	options := speechtotext.NewOptions(opts...)
	if err := validateEncoding(options.EncodingInfo); err != nil {
		return nil, fmt.Errorf("invalid encoding: %w", err)
	}

	ctx, span := tracer.Start(ctx, "transcribe speech")
	conn, err := c.connectWebsocket(ctx, options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	stream := &transcriptionStream{conn: conn, options: options, span: span}
	stream.lastMsgTs.Store(time.Now())

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		stream.readAndProcessMessages()
	}()
	go stream.keepAlive(ctx)

	return stream, nil
}

func (c *TranscriptionClient) connectWebsocket(ctx context.Context, options speechtotext.TranscriptionOptions) (*websocket.Conn, error) {
	queryParams := url.Values{}
	queryParams.Set("encoding", options.EncodingInfo.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(options.EncodingInfo.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", c.model)
	queryParams.Set("language", c.language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("vad_events", "true")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url+"?"+queryParams.Encode(),
		http.Header{"Authorization": {"Token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}

type transcriptionStream struct {
	conn   *websocket.Conn
	connMu sync.Mutex

	options speechtotext.TranscriptionOptions
	span    trace.Span

	lastMsgTs atomicTime
	stopped   bool

	// accumulated is only touched by the read loop.
	accumulated []string
}

func (s *transcriptionStream) SendAudio(audio []byte) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.stopped {
		return fmt.Errorf("transcription stream stopped")
	}
	s.lastMsgTs.Store(time.Now())
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		return fmt.Errorf("failed to write to deepgram client: %w", err)
	}
	return nil
}

// StopStream asks Deepgram to flush the remaining results and close. It is
// safe to call more than once.
func (s *transcriptionStream) StopStream() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)}); err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("failed to close deepgram stream through websocket: %w", err)
	}
	return nil
}

func (s *transcriptionStream) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(s.lastMsgTs.Load()) < keepAliveInterval {
				continue
			}
			s.sendKeepAlive()
		}
	}
}

func (s *transcriptionStream) sendKeepAlive() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.stopped {
		return
	}
	if err := s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: "KeepAlive"}); err != nil {
		logger.Warn("failed to write keep alive to deepgram", "error", err)
	}
}

func (s *transcriptionStream) readAndProcessMessages() {
	defer s.span.End()
	defer s.conn.Close()

	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseNormalClosure {
				s.connMu.Lock()
				stopped := s.stopped
				s.connMu.Unlock()
				if !stopped {
					err = fmt.Errorf("deepgram stream ended unexpectedly: %w", err)
					s.span.RecordError(err)
					s.span.SetStatus(codes.Error, err.Error())
					s.options.ErrorCallback(err)
				}
			}
			s.deliverTranscript()
			return
		}
		if msgType != websocket.BinaryMessage {
			s.processMessage(msg)
		}
	}
}

func (s *transcriptionStream) deliverTranscript() {
	transcript := strings.TrimSpace(strings.Join(s.accumulated, " "))
	s.accumulated = nil
	s.span.SetAttributes(attribute.Int("response.transcript_length", len(transcript)))
	if transcript != "" {
		s.options.TranscriptionCallback(transcript)
	}
}

func (s *transcriptionStream) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}
		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if transcript == "" {
			return
		}
		if msgResp.IsFinal {
			s.accumulated = append(s.accumulated, transcript)
			s.options.InterimTranscriptionCallback(strings.Join(s.accumulated, " "))
		} else {
			s.options.InterimTranscriptionCallback(strings.TrimSpace(strings.Join(s.accumulated, " ") + " " + transcript))
		}

	case api.TypeSpeechStartedResponse:
		s.options.SpeechStartedCallback()
	}
}

type atomicTime struct {
	v atomic.Int64
}

func (t *atomicTime) Store(ts time.Time) { t.v.Store(ts.UnixNano()) }
func (t *atomicTime) Load() time.Time    { return time.Unix(0, t.v.Load()) }
