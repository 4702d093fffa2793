// Package tpl builds outgoing message templates for new, reply, forward and
// mailto flows. A Template is a locally-editable draft: render it with
// String, hand it to an editor, then parse it back and Build the final
// message.
package tpl

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/igbanam/himalaya/internal/config"
	"github.com/igbanam/himalaya/internal/msg"
)

// Kind marks how a Template was derived.
type Kind int

const (
	KindNew Kind = iota
	KindReply
	KindReplyAll
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindReply:
		return "reply"
	case KindReplyAll:
		return "reply-all"
	case KindForward:
		return "forward"
	default:
		return "new"
	}
}

// Template is a draft message pre-populated for local editing.
type Template struct {
	Kind        Kind
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	InReplyTo   string
	References  []string
	Body        string
	Attachments []msg.Attachment
}

// New builds an empty draft carrying only the account identity.
func New(acc *config.Account) *Template {
	return &Template{
		Kind: KindNew,
		From: acc.Addr(),
	}
}

// Reply builds a reply draft from source. With all set, recipients are the
// source's sender plus every To/Cc address, minus the account itself.
func Reply(acc *config.Account, source *msg.Msg, all bool) *Template {
	t := &Template{
		Kind:      KindReply,
		From:      acc.Addr(),
		Subject:   prefixSubject(source.Subject, "Re:"),
		InReplyTo: source.MessageID,
	}
	if all {
		t.Kind = KindReplyAll
	}

	replyTo := source.ReplyTo
	if len(replyTo) == 0 {
		replyTo = source.From
	}
	if all {
		recipients := append([]msg.Address{}, replyTo...)
		recipients = append(recipients, source.To...)
		recipients = append(recipients, source.Cc...)
		t.To = excludeSelf(recipients, acc.Email)
	} else {
		t.To = excludeSelf(replyTo, "")
	}

	if source.MessageID != "" {
		t.References = append(append([]string{}, source.References...), source.MessageID)
	}

	t.Body = "\n" + attribution(source, "wrote") + "\n" + quote(source.BodyText)
	return t
}

// Forward builds a forward draft from source. The original body is carried
// unquoted; attachments come along verbatim only when withAttachments is set.
func Forward(acc *config.Account, source *msg.Msg, withAttachments bool) *Template {
	t := &Template{
		Kind:    KindForward,
		From:    acc.Addr(),
		Subject: prefixSubject(source.Subject, "Fwd:"),
	}
	t.Body = "\n" + attribution(source, "sent") + "\n" + source.BodyText
	if withAttachments {
		t.Attachments = append(t.Attachments, source.Attachments...)
	}
	return t
}

// FromMailto resolves a mailto: URI into a prefilled draft. The URI path is
// the primary recipient; to, cc, bcc, subject and body query keys are
// recognized and percent-decoded; anything else is ignored.
func FromMailto(acc *config.Account, rawURI string) (*Template, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return nil, fmt.Errorf("parse mailto URI: %w", err)
	}
	if u.Scheme != "mailto" {
		return nil, fmt.Errorf("not a mailto URI: %q", rawURI)
	}

	t := New(acc)

	path := u.Opaque
	if path == "" {
		path = u.Path
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return nil, fmt.Errorf("decode mailto recipient: %w", err)
	}
	t.To = splitAddrs(decoded)

	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		switch strings.ToLower(key) {
		case "to":
			t.To = append(t.To, splitAddrs(value)...)
		case "cc":
			t.Cc = append(t.Cc, splitAddrs(value)...)
		case "bcc":
			t.Bcc = append(t.Bcc, splitAddrs(value)...)
		case "subject":
			t.Subject = value
		case "body":
			t.Body = value
		}
	}
	return t, nil
}

// prefixSubject prepends prefix unless the subject already starts with it,
// compared case-insensitively. A subject is never double-prefixed.
func prefixSubject(subject, prefix string) string {
	trimmed := strings.TrimSpace(subject)
	if strings.HasPrefix(strings.ToLower(trimmed), strings.ToLower(prefix)) {
		return trimmed
	}
	if trimmed == "" {
		return prefix
	}
	return prefix + " " + trimmed
}

// attribution renders the line identifying the original sender and date.
func attribution(source *msg.Msg, verb string) string {
	sender := source.Sender().String()
	if sender == "" {
		sender = "unknown sender"
	}
	if source.Date.IsZero() {
		return fmt.Sprintf("%s %s:", sender, verb)
	}
	return fmt.Sprintf("On %s, %s %s:", source.Date.Format("Mon, 2 Jan 2006 15:04"), sender, verb)
}

// quote prefixes every line of body with "> ".
func quote(body string) string {
	if body == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n") + "\n"
}

// excludeSelf formats addresses, dropping self and duplicates. The empty
// self drops nothing but still de-duplicates.
func excludeSelf(addrs []msg.Address, self string) []string {
	self = strings.ToLower(self)
	seen := make(map[string]struct{}, len(addrs))
	var out []string
	for _, a := range addrs {
		email := strings.ToLower(a.Email)
		if email == "" || email == self {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, a.String())
	}
	return out
}

func splitAddrs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String renders the editable form: a header block, a blank line, the body.
func (t *Template) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", t.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(t.To, ", "))
	if len(t.Cc) > 0 {
		fmt.Fprintf(&b, "Cc: %s\n", strings.Join(t.Cc, ", "))
	}
	if len(t.Bcc) > 0 {
		fmt.Fprintf(&b, "Bcc: %s\n", strings.Join(t.Bcc, ", "))
	}
	fmt.Fprintf(&b, "Subject: %s\n", t.Subject)
	if t.InReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: <%s>\n", t.InReplyTo)
	}
	b.WriteString("\n")
	b.WriteString(t.Body)
	return b.String()
}

// Parse parses an edited template back into t, replacing its headers and
// body. Unknown headers are ignored; attachments and references carried on
// t survive the edit.
func (t *Template) Parse(text string) error {
	headerPart, body, _ := strings.Cut(text, "\n\n")
	for _, line := range strings.Split(headerPart, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("malformed header line %q", line)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(name) {
		case "from":
			t.From = value
		case "to":
			t.To = splitAddrs(value)
		case "cc":
			t.Cc = splitAddrs(value)
		case "bcc":
			t.Bcc = splitAddrs(value)
		case "subject":
			t.Subject = value
		case "in-reply-to":
			t.InReplyTo = strings.Trim(value, "<>")
		}
	}
	t.Body = body
	return nil
}

// Build assembles the final outgoing message.
func (t *Template) Build() (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(t.From); err != nil {
		return nil, fmt.Errorf("from address: %w", err)
	}
	if len(t.To) == 0 {
		return nil, fmt.Errorf("no recipients")
	}
	if err := m.To(t.To...); err != nil {
		return nil, fmt.Errorf("to addresses: %w", err)
	}
	if len(t.Cc) > 0 {
		if err := m.Cc(t.Cc...); err != nil {
			return nil, fmt.Errorf("cc addresses: %w", err)
		}
	}
	if len(t.Bcc) > 0 {
		if err := m.Bcc(t.Bcc...); err != nil {
			return nil, fmt.Errorf("bcc addresses: %w", err)
		}
	}
	m.Subject(t.Subject)
	m.SetMessageID()
	if t.InReplyTo != "" {
		m.SetGenHeader(mail.Header("In-Reply-To"), "<"+t.InReplyTo+">")
	}
	if len(t.References) > 0 {
		refs := make([]string, len(t.References))
		for i, ref := range t.References {
			refs[i] = "<" + ref + ">"
		}
		m.SetGenHeader(mail.Header("References"), strings.Join(refs, " "))
	}
	m.SetBodyString(mail.TypeTextPlain, t.Body)
	for _, a := range t.Attachments {
		if err := m.AttachReader(a.Filename, bytes.NewReader(a.Content)); err != nil {
			return nil, fmt.Errorf("attach %q: %w", a.Filename, err)
		}
	}
	return m, nil
}

// Raw renders the built message as MIME bytes, for APPEND to a mailbox.
func (t *Template) Raw() ([]byte, error) {
	m, err := t.Build()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}
	return buf.Bytes(), nil
}
