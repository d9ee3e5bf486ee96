package diag

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/hupe1980/mmcore/codec"
	"github.com/hupe1980/mmcore/linecache"
	"github.com/hupe1980/mmcore/rawbuf"
)

// Format selects the output form of a Renderer.
type Format int

const (
	// FormatCompact prints absolute byte spans on a single line.
	FormatCompact Format = iota
	// FormatPositioned prints line and column plus the source line with a caret marker.
	FormatPositioned
	// FormatJSON prints one Record per line.
	FormatJSON
)

// ParseFormat returns the format with the given name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "compact", "":
		return FormatCompact, nil
	case "positioned", "pretty":
		return FormatPositioned, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("diag: unknown format %q", name)
	}
}

// Record is the machine-readable form of a notation.
type Record struct {
	Source  string            `json:"source"`
	Start   int               `json:"start"`
	End     int               `json:"end"`
	Line    int               `json:"line"`
	Column  int               `json:"column"`
	Level   string            `json:"level"`
	Class   string            `json:"class"`
	Message string            `json:"message"`
	Args    map[string]string `json:"args,omitempty"`
}

// Notation converts r back into a notation with an absolute span. Line and
// Column are ignored; they are recomputed when rendering.
func (r Record) Notation() (Notation, error) {
	level, err := ParseLevel(r.Level)
	if err != nil {
		return Notation{}, err
	}
	class, err := ParseClass(r.Class)
	if err != nil {
		return Notation{}, err
	}
	if r.Start < 0 || r.End < r.Start {
		return Notation{}, fmt.Errorf("diag: invalid span [%d,%d) in %s", r.Start, r.End, r.Source)
	}

	n := Notation{
		Source:  Source{Name: r.Source},
		Span:    Span{Start: r.Start, End: r.End},
		Level:   level,
		Class:   class,
		Message: r.Message,
	}
	for _, id := range slices.Sorted(maps.Keys(r.Args)) {
		n.Args = append(n.Args, Arg{ID: id, Value: r.Args[id]})
	}
	return n, nil
}

type renderOptions struct {
	format Format
	codec  codec.Codec
}

// RenderOption configures a Renderer.
type RenderOption func(*renderOptions)

// WithFormat sets the output format.
func WithFormat(f Format) RenderOption {
	return func(o *renderOptions) { o.format = f }
}

// WithCodec sets the codec used by FormatJSON.
func WithCodec(c codec.Codec) RenderOption {
	return func(o *renderOptions) { o.codec = c }
}

// Renderer writes notations. It reuses internal buffers and is not safe for
// concurrent use.
type Renderer struct {
	cache   *linecache.Cache
	opts    renderOptions
	scratch []byte
}

// NewRenderer returns a renderer resolving positions through cache. A nil
// cache gets a private one.
func NewRenderer(cache *linecache.Cache, opts ...RenderOption) *Renderer {
	o := renderOptions{
		format: FormatCompact,
		codec:  codec.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if cache == nil {
		cache = linecache.New()
	}

	return &Renderer{cache: cache, opts: o}
}

// Render writes n. buf must track the text the notation's spans refer to.
func (r *Renderer) Render(w io.Writer, buf linecache.Buffer, n Notation) error {
	switch r.opts.format {
	case FormatPositioned:
		return r.renderPositioned(w, buf, n)
	case FormatJSON:
		return r.renderJSON(w, buf, n)
	default:
		return r.renderCompact(w, n)
	}
}

func (r *Renderer) renderCompact(w io.Writer, n Notation) error {
	abs := n.Absolute()

	out := rawbuf.Truncate(r.scratch)
	out = fmt.Appendf(out, "%s:%d-%d:%s:%s", n.Source.Name, abs.Start, abs.End, n.Level, n.Message)
	out = appendArgs(out, n.Args)
	out = append(out, '\n')
	r.scratch = out

	_, err := w.Write(out)
	return err
}

func (r *Renderer) renderPositioned(w io.Writer, buf linecache.Buffer, n Notation) error {
	abs := n.Absolute()

	pos, err := r.cache.Position(buf, abs.Start)
	if err != nil {
		return fmt.Errorf("diag: position of %s: %w", n.Source.Name, err)
	}

	text := buf.Bytes()
	start := abs.Start - (pos.Column - 1)
	end := linecache.LineEnd(text, abs.Start)
	line := text[start:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	out := rawbuf.Truncate(r.scratch)
	out = fmt.Appendf(out, "%s:%d:%d: %s: %s", n.Source.Name, pos.Line, pos.Column,
		strings.ToLower(n.Level.String()), n.Message)
	out = appendArgs(out, n.Args)
	out = append(out, '\n')

	lineStart := len(out)
	out = rawbuf.Append(out, line)
	out = append(out, '\n')

	// the marker lines up with the source by reusing its tabs
	indent := min(pos.Column-1, len(line))
	mark := len(out)
	out, err = rawbuf.CopyRange(out, lineStart, lineStart+indent)
	if err != nil {
		return err
	}
	for i := mark; i < len(out); i++ {
		if out[i] != '\t' {
			out[i] = ' '
		}
	}

	carets := max(1, min(abs.End, start+len(line))-abs.Start)
	out = rawbuf.Append(out, []byte(strings.Repeat("^", carets)))
	out = append(out, '\n')
	r.scratch = out

	_, err = w.Write(out)
	return err
}

func (r *Renderer) renderJSON(w io.Writer, buf linecache.Buffer, n Notation) error {
	abs := n.Absolute()

	rec := Record{
		Source:  n.Source.Name,
		Start:   abs.Start,
		End:     abs.End,
		Level:   n.Level.String(),
		Class:   n.Class.String(),
		Message: n.Message,
	}
	if len(n.Args) > 0 {
		rec.Args = make(map[string]string, len(n.Args))
		for _, a := range n.Args {
			rec.Args[a.ID] = a.Value
		}
	}

	if buf.Len() > 0 {
		pos, err := r.cache.Position(buf, abs.Start)
		if err != nil {
			return fmt.Errorf("diag: position of %s: %w", n.Source.Name, err)
		}
		rec.Line, rec.Column = pos.Line, pos.Column
	}

	data, err := r.opts.codec.Marshal(rec)
	if err != nil {
		return fmt.Errorf("diag: encode with %s: %w", r.opts.codec.Name(), err)
	}

	out := rawbuf.Truncate(r.scratch)
	out = rawbuf.Append(out, data)
	out = append(out, '\n')
	r.scratch = out

	_, err = w.Write(out)
	return err
}

func appendArgs(dst []byte, args []Arg) []byte {
	for _, a := range args {
		dst = fmt.Appendf(dst, " %s=%s", a.ID, a.Value)
	}
	return dst
}
