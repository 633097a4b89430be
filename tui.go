package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/orchestrator"
)

// TUI message types
type stateMsg orchestrator.State
type errorMsg struct {
	Kind   orchestrator.ErrorKind
	Detail string
}
type transcriptMsg struct{ Text string }
type silenceMsg struct{ Warn bool }
type updateMsg struct{ Version string }
type tickMsg time.Time

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex
)

var (
	styleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	stylePressed = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleRec     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	styleBusy    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleText    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	styleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleHelp    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	styleHelpKey = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type tuiModel struct {
	state         orchestrator.State
	frame         int
	recStart      time.Time
	msgCount      int
	lastText      string
	lastErr       string
	noVoice       bool
	updateVer     string
	width, height int
}

func newTUIProgram() *tea.Program {
	return tea.NewProgram(tuiModel{}, tea.WithAltScreen())
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func tuiTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case stateMsg:
		prev := m.state
		m.state = orchestrator.State(msg)
		if m.state == orchestrator.StateRecording && prev != orchestrator.StateRecording {
			m.recStart = time.Now()
		}
		if m.state == orchestrator.StatePressed {
			m.lastErr = ""
		}
		if m.state != orchestrator.StateRecording {
			m.noVoice = false
		}

	case errorMsg:
		m.lastErr = fmt.Sprintf("%s failed: %s", msg.Kind, msg.Detail)

	case transcriptMsg:
		m.msgCount++
		m.lastText = msg.Text

	case silenceMsg:
		m.noVoice = msg.Warn

	case updateMsg:
		m.updateVer = msg.Version
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString("\n")

	switch m.state {
	case orchestrator.StatePressed:
		b.WriteString(stylePressed.Render("● HOLD…"))
	case orchestrator.StateRecording:
		b.WriteString(styleRec.Render(fmt.Sprintf("● REC %.1fs", time.Since(m.recStart).Seconds())))
		if m.noVoice {
			b.WriteString(styleErr.Render("  ⚠ no voice detected"))
		}
	case orchestrator.StateTranscribing:
		spin := spinnerFrames[m.frame%len(spinnerFrames)]
		b.WriteString(styleBusy.Render(spin + " TRANSCRIBING"))
	case orchestrator.StateDelivering:
		b.WriteString(styleDone.Render("✓ DELIVERING"))
	default:
		b.WriteString(styleIdle.Render("○ STANDBY"))
	}
	b.WriteString("\n\n")

	if m.lastErr != "" {
		b.WriteString(styleErr.Render("⚠ "+m.lastErr) + "\n\n")
	}

	if m.lastText != "" {
		title := styleIdle.Render(fmt.Sprintf("Last transcription (#%d)", m.msgCount))
		b.WriteString(title + "\n")
		wrapWidth := m.width - 4
		if wrapWidth < 10 {
			wrapWidth = 10
		}
		for _, line := range wrapText(m.lastText, wrapWidth) {
			b.WriteString(styleText.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	help := styleHelpKey.Render("Ctrl+Shift+Space") + styleHelp.Render(" or mouse side button: hold to dictate")
	b.WriteString(help + "\n")
	b.WriteString(styleHelp.Render("murmur "+version) + "\n")
	if m.updateVer != "" {
		b.WriteString(styleErr.Render("update available: "+m.updateVer) + "\n")
	}

	return lipgloss.NewStyle().Padding(0, 2).Render(b.String())
}

func wrapText(s string, width int) []string {
	var lines []string
	words := strings.Fields(s)
	cur := ""
	for _, w := range words {
		if cur == "" {
			cur = w
		} else if len(cur)+1+len(w) <= width {
			cur += " " + w
		} else {
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// tuiSink mirrors lifecycle notifications onto the TUI.
type tuiSink struct{}

func (tuiSink) StateChanged(st orchestrator.State) {
	tuiSend(stateMsg(st))
}

func (tuiSink) SessionError(kind orchestrator.ErrorKind, detail string) {
	tuiSend(errorMsg{Kind: kind, Detail: detail})
}

// notifyDeliverer forwards delivered text to the TUI after the real
// delivery succeeds.
type notifyDeliverer struct {
	inner orchestrator.Deliverer
}

func (d notifyDeliverer) Deliver(text string) error {
	if err := d.inner.Deliver(text); err != nil {
		return err
	}
	tuiSend(transcriptMsg{Text: text})
	return nil
}
