package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	orchestration "github.com/koscakluka/ema-tutor/core"
	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"github.com/muesli/reflow/wordwrap"
)

// oneShotDuration is how long the avatar holds a one-shot animation before
// reporting it ended.
const oneShotDuration = 2 * time.Second

// Session is the part of the tutor the UI drives.
type Session interface {
	SendMessage(ctx context.Context, text string) error
	CheckAnswer(ctx context.Context, answer string) error
	SetLevel(ctx context.Context, level tutoring.Level) error
	SetMode(ctx context.Context, mode tutoring.Mode) error
	Restart(ctx context.Context) error
	StartVoiceInput(ctx context.Context) error
	StopVoiceInput() error
	AnimationEnded()
	Snapshot() orchestration.Snapshot
}

// Model is the root Bubbletea model.
type Model struct {
	session Session
	bridge  *Bridge

	width  int
	height int

	snapshot  orchestration.Snapshot
	animation AnimationMsg
	warning   string
	interim   string
	status    string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
}

func New(session Session, bridge *Bridge) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	m := Model{
		session:  session,
		bridge:   bridge,
		snapshot: session.Snapshot(),
		viewport: viewport.New(0, 0),
		input:    input,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.updatePlaceholder()
	return m
}

// Init listens to the tutor and starts the session in its current mode.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.bridge.waitForEvent(),
		m.bridge.waitForAnimation(),
		m.run("restart", m.session.Restart),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.applyEvent(msg.Event)
		m.snapshot = m.session.Snapshot()
		m.updatePlaceholder()
		m.refreshContent()
		return m, m.bridge.waitForEvent()

	case AnimationMsg:
		m.animation = msg
		cmds := []tea.Cmd{m.bridge.waitForAnimation()}
		if !msg.Loop {
			seq := msg.Seq
			cmds = append(cmds, tea.Tick(oneShotDuration, func(time.Time) tea.Msg {
				return AnimationEndedMsg{Seq: seq}
			}))
		}
		return m, tea.Batch(cmds...)

	case AnimationEndedMsg:
		if msg.Seq == m.animation.Seq {
			m.session.AnimationEnded()
		}
		return m, nil

	case ActionDoneMsg:
		m.status = ""
		if msg.Err != nil {
			log.Warn("tutor action failed", "action", msg.Action, "err", msg.Err)
			m.status = describeFailure(msg.Action, msg.Err)
		}
		m.snapshot = m.session.Snapshot()
		m.updatePlaceholder()
		m.refreshContent()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyCtrlC, KeyEsc:
		return m, tea.Quit

	case KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		if m.snapshot.Mode == tutoring.ModePractice {
			return m, m.run("check answer", func(ctx context.Context) error {
				return m.session.CheckAnswer(ctx, text)
			})
		}
		return m, m.run("send message", func(ctx context.Context) error {
			return m.session.SendMessage(ctx, text)
		})

	case KeyTab:
		next := tutoring.ModePractice
		if m.snapshot.Mode == tutoring.ModePractice {
			next = tutoring.ModeChat
		}
		return m, m.run("switch mode", func(ctx context.Context) error {
			return m.session.SetMode(ctx, next)
		})

	case KeyCycleLevel:
		next := nextLevel(m.snapshot.Level)
		return m, m.run("change level", func(ctx context.Context) error {
			return m.session.SetLevel(ctx, next)
		})

	case KeyRestart:
		return m, m.run("restart", m.session.Restart)

	case KeyPushToTalk:
		if m.snapshot.Recording {
			return m, m.run("stop voice input", func(context.Context) error {
				return m.session.StopVoiceInput()
			})
		}
		m.interim = ""
		return m, m.run("start voice input", m.session.StartVoiceInput)

	case KeyPageUp, KeyPageDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return ActionDoneMsg{Action: action, Err: fn(context.Background())}
	}
}

func (m *Model) applyEvent(event events.Event) {
	switch event := event.(type) {
	case events.UserTranscriptInterimUpdated:
		m.interim = event.Transcript
	case events.UserTranscriptFinal:
		m.interim = ""
	case events.WarningRaised:
		m.warning = event.Message
	case events.ErrorRaised:
		if event.Err != nil {
			log.Error(event.Message, "err", event.Err)
		}
	}
}

func (m *Model) updatePlaceholder() {
	if m.snapshot.Mode == tutoring.ModePractice {
		m.input.Placeholder = "Tu respuesta..."
		return
	}
	m.input.Placeholder = "Escribe tu mensaje..."
}

func (m *Model) layout() {
	contentWidth := m.contentWidth()
	m.input.Width = contentWidth - len(m.input.Prompt)

	// header, input, status, help and the panel border
	m.viewport.Width = contentWidth
	m.viewport.Height = max(m.height-6, 1)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithColorProfile(lipgloss.ColorProfile()),
		glamour.WithStandardStyle(styles.DarkStyle),
		glamour.WithWordWrap(contentWidth),
	)
	if err != nil {
		log.Warn("markdown renderer unavailable", "err", err)
	}
	m.renderer = renderer
}

func (m Model) contentWidth() int {
	// avatar panel plus its border, and this panel's border
	return max(m.width-avatarWidth-6, 20)
}

func (m *Model) refreshContent() {
	if m.snapshot.Mode == tutoring.ModePractice {
		m.viewport.SetContent(m.renderPractice())
		m.viewport.GotoTop()
		return
	}
	m.viewport.SetContent(m.renderChat())
	m.viewport.GotoBottom()
}

func (m Model) renderChat() string {
	width := m.contentWidth()
	var b strings.Builder
	for _, message := range m.snapshot.Messages {
		if message.Role == llms.MessageRoleUser {
			b.WriteString(UserLabelStyle.Render("Tú"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(message.Content, width))
			b.WriteString("\n\n")
			continue
		}

		b.WriteString(TutorLabelStyle.Render("Pablo"))
		b.WriteString("\n")
		content := message.Content
		if content == "" && m.snapshot.ChatLoading {
			content = "..."
		}
		b.WriteString(m.renderMarkdown(content, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderPractice() string {
	width := m.contentWidth()
	if m.snapshot.Exercise == nil {
		if m.snapshot.PracticeLoading {
			return "Preparando un ejercicio..."
		}
		return wordwrap.String("No exercise yet. Press ctrl+n to fetch one.", width)
	}

	var b strings.Builder
	b.WriteString(BadgeStyle.Render(m.snapshot.Exercise.Type))
	b.WriteString("\n\n")
	b.WriteString(QuestionStyle.Render(wordwrap.String(m.snapshot.Exercise.Question, width)))
	b.WriteString("\n\n")

	if feedback := m.snapshot.Feedback; feedback != nil {
		style, label := IncorrectStyle, "Casi..."
		if feedback.IsCorrect {
			style, label = CorrectStyle, "¡Correcto!"
		}
		b.WriteString(style.Render(label))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(feedback.Text, width))
	}
	return b.String()
}

func (m Model) renderMarkdown(content string, width int) string {
	if m.renderer != nil {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
		log.Debug("failed to render markdown", "err", err)
	}
	return wordwrap.String(content, width) + "\n"
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		TitleStyle.Render("Pablo · Tutor de español"),
		HeaderStyle.Render(fmt.Sprintf("  %s %s  •  %s",
			m.snapshot.Level, m.snapshot.Level.Description(), m.snapshot.Mode)),
	)

	panel := PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		m.input.View(),
	))
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		renderAvatar(m.animation.Name, m.snapshot.Expression),
		panel,
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.statusLine(),
		HelpStyle.Render(helpText),
	)
}

func (m Model) statusLine() string {
	var parts []string
	if m.loading() {
		parts = append(parts, m.spinner.View()+" Pablo está pensando...")
	}
	if m.snapshot.Recording {
		listening := RecordingDotStyle.Render("●") + " Escuchando"
		if m.interim != "" {
			listening += " " + InterimTextStyle.Render(m.interim)
		}
		parts = append(parts, listening)
	}
	switch {
	case m.snapshot.Error != "":
		parts = append(parts, ErrorTextStyle.Render(m.snapshot.Error))
	case m.status != "":
		parts = append(parts, ErrorTextStyle.Render(m.status))
	case m.warning != "":
		parts = append(parts, WarningTextStyle.Render(m.warning))
	}
	return strings.Join(parts, "  ")
}

func (m Model) loading() bool {
	if m.snapshot.Mode == tutoring.ModePractice {
		return m.snapshot.PracticeLoading
	}
	return m.snapshot.ChatLoading
}

func nextLevel(current tutoring.Level) tutoring.Level {
	for i, level := range tutoring.Levels {
		if level == current {
			return tutoring.Levels[(i+1)%len(tutoring.Levels)]
		}
	}
	return tutoring.DefaultLevel
}

// describeFailure turns errors the session does not already surface into a
// status line. Turn failures are reported through the session's own error.
func describeFailure(action string, err error) string {
	switch {
	case errors.Is(err, orchestration.ErrChatUnavailable),
		errors.Is(err, orchestration.ErrPracticeUnavailable),
		errors.Is(err, orchestration.ErrVoiceUnavailable),
		errors.Is(err, tutoring.ErrNoExercise):
		return fmt.Sprintf("Cannot %s: %v", action, err)
	case errors.Is(err, orchestration.ErrClosed):
		return ""
	}
	if strings.HasPrefix(action, "start voice") || strings.HasPrefix(action, "stop voice") {
		return orchestration.VoiceErrorMessage
	}
	return ""
}
