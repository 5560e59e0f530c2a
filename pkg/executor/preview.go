package executor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/ormasoftchile/scaff/pkg/plugin"
)

// DefaultPreviewWidth bounds the inline text shown for write-file actions.
const DefaultPreviewWidth = 40

// Preview prints one line per action and performs nothing.
type Preview struct {
	Out   io.Writer
	Width int
}

var _ Executor = (*Preview)(nil)

func (p *Preview) Execute(_ context.Context, a plugin.Action) error {
	_, err := fmt.Fprintln(p.Out, p.describe(a))
	return err
}

func (p *Preview) describe(a plugin.Action) string {
	if a.Kind != plugin.KindWriteFile {
		return a.String()
	}
	width := p.Width
	if width <= 0 {
		width = DefaultPreviewWidth
	}
	text := strings.ReplaceAll(a.Text, "\n", `\n`)
	return fmt.Sprintf("Write '%s' to %s", runewidth.Truncate(text, width, "…"), a.Path)
}
