package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Format selects how discovered resources are written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a user-supplied name onto a Format.
// An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or csv)", name)
	}
}

// Writer streams resources in discovery order.
type Writer interface {
	Write(res Resource) error
}

// NewWriter returns a Writer for the given format. Every resource is flushed
// to w as soon as it is written.
func NewWriter(format Format, w io.Writer) Writer {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &jsonWriter{enc: enc}
	case FormatCSV:
		return &csvWriter{cw: csv.NewWriter(w)}
	default:
		return &textWriter{w: w}
	}
}

type textWriter struct {
	w io.Writer
}

// Write emits "<url> <kind>".
func (t *textWriter) Write(res Resource) error {
	if _, err := fmt.Fprintf(t.w, "%s %s\n", res.URL, res.Kind); err != nil {
		return fmt.Errorf("write resource %s: %w", res.URL, err)
	}
	return nil
}

type jsonWriter struct {
	enc *json.Encoder
}

// Write emits one JSON object per line.
func (j *jsonWriter) Write(res Resource) error {
	if err := j.enc.Encode(res); err != nil {
		return fmt.Errorf("write json resource %s: %w", res.URL, err)
	}
	return nil
}

type csvWriter struct {
	cw          *csv.Writer
	wroteHeader bool
}

// Write emits a CSV row, preceded by a "url,kind" header on first use.
func (c *csvWriter) Write(res Resource) error {
	if !c.wroteHeader {
		if err := c.cw.Write([]string{"url", "kind"}); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		c.wroteHeader = true
	}
	if err := c.cw.Write([]string{res.URL, res.Kind.String()}); err != nil {
		return fmt.Errorf("write csv record for %s: %w", res.URL, err)
	}

	c.cw.Flush()
	if err := c.cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
