package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/agentwt/agentwt/internal/infra/output"
)

type Renderer struct {
	out       io.Writer
	theme     Theme
	useColor  bool
	wrapWidth int
}

func NewRenderer(out io.Writer, theme Theme, useColor bool) *Renderer {
	return &Renderer{
		out:       out,
		theme:     theme,
		useColor:  useColor,
		wrapWidth: currentWrapWidth(),
	}
}

func (r *Renderer) Header(text string) {
	r.writeLine(r.style(text, r.theme.Header))
}

func (r *Renderer) Blank() {
	fmt.Fprintln(r.out)
}

func (r *Renderer) Section(title string) {
	r.writeLine(r.style(title, r.theme.SectionTitle))
}

func (r *Renderer) Step(text string) {
	r.bullet(text)
}

func (r *Renderer) StepLog(text string) {
	r.writeWithPrefix(output.Indent+output.Indent+output.LogConnector+" ", r.style(text, r.theme.Muted))
}

func (r *Renderer) StepLogOutput(text string) {
	r.writeWithPrefix(output.LogOutputPrefix(), r.style(text, r.theme.Muted))
}

func (r *Renderer) Result(text string) {
	r.bullet(text)
}

func (r *Renderer) Bullet(text string) {
	r.bullet(text)
}

func (r *Renderer) BulletWithDescription(id, description, suffix string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Muted.Render(prefix)
	}
	line := id
	desc := strings.TrimSpace(description)
	if desc != "" {
		if r.useColor {
			line += r.theme.Muted.Render(" - " + desc)
		} else {
			line += " - " + desc
		}
	}
	if strings.TrimSpace(suffix) != "" {
		value := " " + strings.TrimSpace(suffix)
		if r.useColor {
			value = r.theme.Muted.Render(value)
		}
		line += value
	}
	r.writeWithPrefix(output.Indent+prefix, line)
}

func (r *Renderer) BulletSuccess(text string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Success.Render(prefix)
	}
	r.writeWithPrefix(output.Indent+prefix, text)
}

func (r *Renderer) BulletError(text string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Error.Render(prefix)
		text = r.theme.Error.Render(text)
	}
	r.writeWithPrefix(output.Indent+prefix, text)
}

func (r *Renderer) Warn(text string) {
	r.writeWithPrefix(output.Indent, r.style(text, r.theme.Warn))
}

func (r *Renderer) Log(text string) {
	r.StepLog(text)
}

func (r *Renderer) LogOutput(text string) {
	r.StepLogOutput(text)
}

func (r *Renderer) style(text string, style lipgloss.Style) string {
	if !r.useColor {
		return text
	}
	return style.Render(text)
}

func (r *Renderer) bullet(text string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Muted.Render(prefix)
	}
	r.writeWithPrefix(output.Indent+prefix, text)
}

func (r *Renderer) writeWithPrefix(prefix, text string) {
	if r.wrapWidth <= 0 {
		r.writeLine(prefix + text)
		return
	}
	prefixWidth := lipgloss.Width(prefix)
	available := r.wrapWidth - prefixWidth
	if available <= 0 {
		r.writeLine(prefix + text)
		return
	}
	wrapped := ansi.Wrap(text, available, "")
	lines := strings.Split(wrapped, "\n")
	if len(lines) == 0 {
		return
	}
	r.writeLine(prefix + lines[0])
	if len(lines) == 1 {
		return
	}
	padding := strings.Repeat(" ", prefixWidth)
	for _, line := range lines[1:] {
		r.writeLine(padding + line)
	}
}

func (r *Renderer) writeLine(text string) {
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}
