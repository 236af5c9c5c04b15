package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-tutor/core"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/expression"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

type sessionStub struct {
	mu             sync.Mutex
	snapshot       orchestration.Snapshot
	sent           []string
	answers        []string
	levels         []tutoring.Level
	modes          []tutoring.Mode
	restarts       int
	voiceStarts    int
	voiceStops     int
	animationsDone int
}

func newSessionStub() *sessionStub {
	return &sessionStub{snapshot: orchestration.Snapshot{
		Level:      tutoring.DefaultLevel,
		Mode:       tutoring.ModeChat,
		Expression: expression.Idle,
	}}
}

func (s *sessionStub) SendMessage(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	return nil
}

func (s *sessionStub) CheckAnswer(_ context.Context, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = append(s.answers, answer)
	return nil
}

func (s *sessionStub) SetLevel(_ context.Context, level tutoring.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
	return nil
}

func (s *sessionStub) SetMode(_ context.Context, mode tutoring.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = append(s.modes, mode)
	return nil
}

func (s *sessionStub) Restart(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restarts++
	return nil
}

func (s *sessionStub) StartVoiceInput(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceStarts++
	return orchestration.ErrVoiceUnavailable
}

func (s *sessionStub) StopVoiceInput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceStops++
	return nil
}

func (s *sessionStub) AnimationEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animationsDone++
}

func (s *sessionStub) Snapshot() orchestration.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func newTestModel(session *sessionStub) Model {
	m := New(session, NewBridge())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func TestEnterSendsMessageInChat(t *testing.T) {
	session := newSessionStub()
	m := typeText(newTestModel(session), "  Hola Pablo ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model := updated.(Model)
	if cmd == nil {
		t.Fatal("expected a command for the message")
	}
	if model.input.Value() != "" {
		t.Errorf("input should be cleared, got %q", model.input.Value())
	}

	msg := cmd()
	done, ok := msg.(ActionDoneMsg)
	if !ok || done.Err != nil {
		t.Fatalf("expected successful action, got %#v", msg)
	}
	if len(session.sent) != 1 || session.sent[0] != "Hola Pablo" {
		t.Errorf("sent = %q", session.sent)
	}
}

func TestEnterChecksAnswerInPractice(t *testing.T) {
	session := newSessionStub()
	session.snapshot.Mode = tutoring.ModePractice
	m := typeText(newTestModel(session), "fui")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	cmd()

	if len(session.answers) != 1 || session.answers[0] != "fui" {
		t.Errorf("answers = %q", session.answers)
	}
	if len(session.sent) != 0 {
		t.Errorf("no chat message expected, got %q", session.sent)
	}
}

func TestEnterIgnoresBlankInput(t *testing.T) {
	m := typeText(newTestModel(newSessionStub()), "   ")

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("blank input should not start an action")
	}
}

func TestTabTogglesMode(t *testing.T) {
	session := newSessionStub()
	m := newTestModel(session)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	cmd()

	if len(session.modes) != 1 || session.modes[0] != tutoring.ModePractice {
		t.Errorf("modes = %v", session.modes)
	}
}

func TestCycleLevelWraps(t *testing.T) {
	session := newSessionStub()
	session.snapshot.Level = tutoring.LevelC2
	m := newTestModel(session)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	cmd()

	if len(session.levels) != 1 || session.levels[0] != tutoring.LevelB1 {
		t.Errorf("levels = %v", session.levels)
	}
}

func TestPushToTalkReportsMissingVoice(t *testing.T) {
	session := newSessionStub()
	m := newTestModel(session)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	updated, _ := m.Update(cmd())
	model := updated.(Model)

	if session.voiceStarts != 1 {
		t.Errorf("voiceStarts = %d", session.voiceStarts)
	}
	if !strings.Contains(model.status, orchestration.ErrVoiceUnavailable.Error()) {
		t.Errorf("status = %q", model.status)
	}
}

func TestPushToTalkStopsWhileRecording(t *testing.T) {
	session := newSessionStub()
	session.snapshot.Recording = true
	m := newTestModel(session)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	cmd()

	if session.voiceStops != 1 || session.voiceStarts != 0 {
		t.Errorf("voiceStops = %d, voiceStarts = %d", session.voiceStops, session.voiceStarts)
	}
}

func TestEventRefreshesTranscript(t *testing.T) {
	session := newSessionStub()
	m := newTestModel(session)

	session.snapshot.Messages = []llms.Message{
		{Role: llms.MessageRoleUser, Content: "¿Qué tal?"},
		{Role: llms.MessageRoleModel, Content: "¡Muy bien, parcero!"},
	}
	updated, cmd := m.Update(EventMsg{Event: events.NewTranscriptUpdated(session.snapshot.Messages)})
	model := updated.(Model)

	if cmd == nil {
		t.Error("expected to keep listening for events")
	}
	view := model.View()
	if !strings.Contains(view, "¿Qué tal?") {
		t.Errorf("view should contain the user message:\n%s", view)
	}
	if !strings.Contains(model.renderChat(), "parcero") {
		t.Errorf("chat should contain the reply:\n%s", model.renderChat())
	}
}

func TestInterimTranscriptShownWhileRecording(t *testing.T) {
	session := newSessionStub()
	session.snapshot.Recording = true
	m := newTestModel(session)

	updated, _ := m.Update(EventMsg{Event: events.NewUserTranscriptInterimUpdated("me gusta")})
	model := updated.(Model)
	if !strings.Contains(model.statusLine(), "me gusta") {
		t.Errorf("status = %q", model.statusLine())
	}

	updated, _ = model.Update(EventMsg{Event: events.NewUserTranscriptFinal("me gusta")})
	model = updated.(Model)
	if model.interim != "" {
		t.Errorf("interim should be cleared, got %q", model.interim)
	}
}

func TestOneShotAnimationReportsEnd(t *testing.T) {
	session := newSessionStub()
	m := newTestModel(session)

	updated, _ := m.Update(AnimationMsg{Name: expression.AnimationHappy, Seq: 3})
	model := updated.(Model)

	// A stale end is ignored.
	updated, _ = model.Update(AnimationEndedMsg{Seq: 2})
	model = updated.(Model)
	if session.animationsDone != 0 {
		t.Fatalf("stale animation end should be ignored")
	}

	model.Update(AnimationEndedMsg{Seq: 3})
	if session.animationsDone != 1 {
		t.Errorf("animationsDone = %d", session.animationsDone)
	}
}

func TestPracticeViewShowsExerciseAndFeedback(t *testing.T) {
	session := newSessionStub()
	session.snapshot.Mode = tutoring.ModePractice
	session.snapshot.Exercise = &tutoring.Exercise{
		Type:     "conjugation",
		Question: "Conjuga 'tener' en pretérito (yo).",
		Answer:   "tuve",
	}
	session.snapshot.Feedback = &orchestration.Feedback{Text: "Exacto.", IsCorrect: true}
	m := newTestModel(session)

	updated, _ := m.Update(EventMsg{Event: events.NewFeedbackReady("Exacto.", true)})
	content := updated.(Model).renderPractice()

	for _, want := range []string{"conjugation", "tener", "¡Correcto!", "Exacto."} {
		if !strings.Contains(content, want) {
			t.Errorf("practice view should contain %q:\n%s", want, content)
		}
	}
}

func TestBridgeKeepsLatestAnimation(t *testing.T) {
	bridge := NewBridge()
	bridge.Play(expression.AnimationThinking, false)
	bridge.Play(expression.AnimationIdle, true)

	msg := bridge.waitForAnimation()()
	animation, ok := msg.(AnimationMsg)
	if !ok {
		t.Fatalf("expected AnimationMsg, got %#v", msg)
	}
	if animation.Name != expression.AnimationIdle || animation.Seq != 2 {
		t.Errorf("animation = %+v", animation)
	}
}

func TestBridgeCloseReleasesHandler(t *testing.T) {
	bridge := NewBridge()
	for range eventBuffer {
		bridge.HandleEvent(events.NewWarningRaised("full"))
	}

	done := make(chan struct{})
	go func() {
		bridge.HandleEvent(events.NewWarningRaised("blocked"))
		close(done)
	}()
	bridge.Close()
	<-done

	// Nothing is left to deliver once the events are drained and the bridge
	// is closed.
	for range eventBuffer {
		<-bridge.events
	}
	if msg := bridge.waitForEvent()(); msg != nil {
		t.Errorf("expected no message after close, got %#v", msg)
	}
}
