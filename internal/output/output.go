// Package output renders command results in plain or JSON form.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/igbanam/himalaya/internal/msg"
)

// Format selects the rendering mode.
type Format int

const (
	FormatPlain Format = iota
	FormatJSON
)

// ParseFormat parses "plain" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "plain":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatPlain, fmt.Errorf("unknown output format %q (expected plain or json)", s)
	}
}

// Printer writes rendered results to a single destination.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Mailboxes renders a mailbox name listing.
func (p *Printer) Mailboxes(names []string) error {
	if p.format == FormatJSON {
		return p.json(map[string]any{"mailboxes": names})
	}
	for _, name := range names {
		fmt.Fprintln(p.w, name)
	}
	return nil
}

// summary is the JSON shape of a message listing row.
type summary struct {
	Seq     uint32   `json:"seq"`
	UID     uint32   `json:"uid"`
	Flags   []string `json:"flags"`
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Date    string   `json:"date"`
}

func summarize(m *msg.Msg) summary {
	date := ""
	if !m.Date.IsZero() {
		date = m.Date.Format(time.RFC3339)
	}
	return summary{
		Seq:     m.Seq,
		UID:     m.UID,
		Flags:   m.Flags,
		From:    m.Sender().String(),
		Subject: m.Subject,
		Date:    date,
	}
}

// Messages renders a page of message summaries.
func (p *Printer) Messages(msgs []*msg.Msg) error {
	if p.format == FormatJSON {
		rows := make([]summary, len(msgs))
		for i, m := range msgs {
			rows[i] = summarize(m)
		}
		return p.json(map[string]any{"messages": rows})
	}

	tw := tabwriter.NewWriter(p.w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tFLAGS\tFROM\tSUBJECT\tDATE")
	for _, m := range msgs {
		row := summarize(m)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			row.Seq, strings.Join(row.Flags, " "), row.From, row.Subject, row.Date)
	}
	return tw.Flush()
}

// Message renders one message. With raw set, the original MIME bytes are
// written untouched; otherwise mime selects the body part to show, "plain"
// (default) or "html".
func (p *Printer) Message(m *msg.Msg, raw bool, mime string) error {
	if raw {
		if len(m.Raw) == 0 {
			return fmt.Errorf("message %d has no raw source", m.Seq)
		}
		_, err := p.w.Write(m.Raw)
		return err
	}
	body := m.BodyText
	if strings.EqualFold(mime, "html") {
		body = m.BodyHTML
	}
	if p.format == FormatJSON {
		return p.json(map[string]any{
			"summary": summarize(m),
			"body":    body,
		})
	}
	fmt.Fprintf(p.w, "From: %s\n", m.Sender().String())
	fmt.Fprintf(p.w, "Subject: %s\n", m.Subject)
	if !m.Date.IsZero() {
		fmt.Fprintf(p.w, "Date: %s\n", m.Date.Format(time.RFC1123Z))
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, body)
	return nil
}

// OK reports a successful mutation.
func (p *Printer) OK(message string) error {
	if p.format == FormatJSON {
		return p.json(map[string]any{"ok": true, "message": message})
	}
	fmt.Fprintln(p.w, message)
	return nil
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
