package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/todos/pkg/types"
)

var (
	boxChecked   = "☑"
	boxUnchecked = "☐"
)

// styles are bound to one writer so colour is only emitted to terminals.
type styles struct {
	title, done, id, success, failure lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		done:    r.NewStyle().Faint(true).Strikethrough(true),
		id:      r.NewStyle().Foreground(lipgloss.Color("12")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// renderTodo formats t as one human-readable line.
func (s styles) renderTodo(t types.Todo) string {
	box, title := boxUnchecked, s.title.Render(t.Title)
	if t.Status {
		box, title = boxChecked, s.done.Render(t.Title)
	}
	return fmt.Sprintf("%s %s %s", box, s.id.Render("#"+strconv.FormatUint(uint64(t.ID), 10)), title)
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, newStyles(w).success.Render("✔ "+msg))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, newStyles(w).failure.Render("✖ "+err.Error()))
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// printTodo writes t in the selected output mode.
func (a *app) printTodo(w io.Writer, t types.Todo) error {
	if a.flags.jsonMode {
		return printJSON(w, t)
	}
	fmt.Fprintln(w, newStyles(w).renderTodo(t))
	return nil
}

// parseID parses a base-10 todo identifier.
func parseID(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, userError(fmt.Errorf("invalid todo id %q: must be an unsigned 32-bit integer", s))
	}
	return uint32(n), nil
}
