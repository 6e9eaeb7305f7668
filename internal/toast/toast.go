// Package toast is the transient, non-blocking notification side channel used
// to surface results and failures to the user.
package toast

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "info"
}

// Message is a single toast: a title line and an optional body.
type Message struct {
	Kind  Kind
	Title string
	Body  string
}

// Notifier shows toasts. Implementations must not block the caller.
type Notifier interface {
	Show(msg Message)
}

// Terminal renders toasts as one styled line each.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	title map[Kind]lipgloss.Style
	body  lipgloss.Style
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		out: out,
		title: map[Kind]lipgloss.Style{
			Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Bold(true),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B")).Bold(true),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true),
		},
		body: lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")),
	}
}

func (t *Terminal) Show(msg Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := t.title[msg.Kind].Render(msg.Title)
	if msg.Body != "" {
		line += " " + t.body.Render(msg.Body)
	}
	fmt.Fprintln(t.out, line)
}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Show(msg Message) {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent toast, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Discard drops every toast.
type Discard struct{}

func (Discard) Show(Message) {}
