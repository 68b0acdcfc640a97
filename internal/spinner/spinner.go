// Package spinner provides a terminal spinner with ticker-style status
// display for long-running release steps. It shows the current step label
// alongside the latest output line from a subprocess, updating in place
// without polluting the terminal buffer.
package spinner

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Spinner displays a spinner with a step label and streamed status updates.
// Output from a subprocess can be piped through Writer(), and the latest
// line will be displayed next to the spinner.
type Spinner struct {
	program *tea.Program
	reader  *io.PipeReader
	writer  *io.PipeWriter
	msgCh   chan tea.Msg
	done    chan struct{}
	wg      sync.WaitGroup
	output  io.Writer
}

// New creates a new Spinner that writes to the given output (typically
// os.Stderr). If output is nil, os.Stderr is used.
func New(output io.Writer) *Spinner {
	if output == nil {
		output = os.Stderr
	}

	reader, writer := io.Pipe()
	return &Spinner{
		reader: reader,
		writer: writer,
		msgCh:  make(chan tea.Msg, 100), // Buffer to avoid blocking the pipe reader
		done:   make(chan struct{}),
		output: output,
	}
}

// Writer returns the io.Writer that should be passed to subprocesses.
// Lines written here will appear in the spinner's status display.
func (s *Spinner) Writer() io.Writer {
	return s.writer
}

// SetStep updates the step label shown next to the spinner.
func (s *Spinner) SetStep(name string) {
	select {
	case s.msgCh <- stepMsg(name):
	case <-s.done:
	}
}

// Start begins the spinner display. This blocks until Stop() is called.
// Call this in a goroutine if you need to do work while the spinner runs.
func (s *Spinner) Start() error {
	s.wg.Add(1)
	go s.readLines()

	width := 80 // default
	if fd := int(os.Stderr.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	m := newModel(s.msgCh, width)

	s.program = tea.NewProgram(m,
		tea.WithOutput(s.output),
		tea.WithoutSignalHandler(), // Let parent handle signals
	)

	_, err := s.program.Run()

	s.wg.Wait()

	return err
}

// Stop stops the spinner and cleans up resources.
// The spinner line is cleared from the terminal.
func (s *Spinner) Stop() {
	_ = s.writer.Close() //nolint:errcheck // Close signals EOF to the reader

	close(s.done)

	if s.program != nil {
		s.program.Quit()
	}
}

// readLines reads lines from the pipe and sends them to the model.
func (s *Spinner) readLines() {
	defer s.wg.Done()
	defer s.reader.Close()

	scanner := bufio.NewScanner(s.reader)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		select {
		case s.msgCh <- lineMsg(line):
		case <-s.done:
			return
		}
	}
}

// model is the bubbletea model for the spinner.
type model struct {
	spinner    spinner.Model
	step       string
	statusLine string
	width      int
	msgCh      <-chan tea.Msg
	quitting   bool
}

// lineMsg is sent when a new output line is received from the pipe.
type lineMsg string

// stepMsg is sent when the pipeline advances to a new step.
type stepMsg string

var stepStyle = lipgloss.NewStyle().Bold(true)

// newModel creates a new spinner model.
func newModel(msgCh <-chan tea.Msg, width int) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return model{
		spinner: s,
		width:   width,
		msgCh:   msgCh,
	}
}

// Init implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForMsg(m.msgCh),
	)
}

// Update implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case stepMsg:
		m.step = string(msg)
		m.statusLine = "" // Old subprocess output belongs to the old step
		return m, waitForMsg(m.msgCh)

	case lineMsg:
		m.statusLine = string(msg)
		return m, waitForMsg(m.msgCh)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
//
//nolint:gocritic // hugeParam: tea.Model interface requires value receiver
func (m model) View() string {
	if m.quitting {
		return "" // Clear the line on exit
	}

	prefix := m.spinner.View() + " "
	if m.step != "" {
		prefix += stepStyle.Render(m.step) + " "
	}

	maxLineWidth := m.width - lipgloss.Width(prefix)
	if maxLineWidth < 10 {
		maxLineWidth = 10
	}

	return prefix + truncate(m.statusLine, maxLineWidth)
}

// waitForMsg returns a command that waits for the next spinner message.
func waitForMsg(msgCh <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-msgCh
		if !ok {
			return tea.Quit()
		}
		return msg
	}
}

// truncate shortens a string to fit within maxWidth.
// If truncated, it adds "..." at the end.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return ""
	}
	if len(s) <= maxWidth {
		return s
	}
	return s[:maxWidth-3] + "..."
}
