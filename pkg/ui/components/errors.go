package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ErrorEntry is one displayed error.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// ErrorsComponent keeps the most recent errors.
type ErrorsComponent struct {
	limit   int
	entries []ErrorEntry
	now     func() time.Time
}

// NewErrorsComponent keeps at most limit entries.
func NewErrorsComponent(limit int) *ErrorsComponent {
	if limit < 1 {
		limit = 1
	}
	return &ErrorsComponent{
		limit:   limit,
		entries: make([]ErrorEntry, 0, limit),
		now:     time.Now,
	}
}

// Add appends msg, dropping the oldest entry when full.
func (e *ErrorsComponent) Add(msg string) {
	e.entries = append(e.entries, ErrorEntry{Message: msg, Timestamp: e.now()})
	if len(e.entries) > e.limit {
		e.entries = e.entries[len(e.entries)-e.limit:]
	}
}

// Clear drops every entry.
func (e *ErrorsComponent) Clear() {
	e.entries = e.entries[:0]
}

// Entries returns the entries, oldest first.
func (e *ErrorsComponent) Entries() []ErrorEntry {
	return e.entries
}

// View renders the panel, or nothing when empty.
func (e *ErrorsComponent) View() string {
	if len(e.entries) == 0 {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	var b strings.Builder
	b.WriteString(headerStyle.Render("ERRORS"))
	b.WriteString(muted.Render(" (e: clear)"))
	b.WriteString("\n")
	for _, entry := range e.entries {
		ago := e.now().Sub(entry.Timestamp).Round(time.Second)
		b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", entry.Message)))
		b.WriteString(muted.Render(fmt.Sprintf("(%s ago)", ago)))
		b.WriteString("\n")
	}
	return b.String()
}
