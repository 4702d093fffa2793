// Package msg provides the message model and MIME parsing using enmime.
package msg

import (
	"bytes"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
)

// Msg represents an email message. A resident message (fetched from the
// mailbox session) carries Seq/UID/Flags; a transient message (constructed
// locally) leaves them zero.
type Msg struct {
	Seq   uint32
	UID   uint32
	Flags []string

	Subject    string
	Date       time.Time
	From       []Address
	To         []Address
	Cc         []Address
	Bcc        []Address
	ReplyTo    []Address
	MessageID  string
	InReplyTo  string
	References []string

	BodyText    string
	BodyHTML    string
	Attachments []Attachment

	Raw []byte // original MIME bytes, when fetched in full
}

// Address represents an email address with optional display name.
type Address struct {
	Name  string
	Email string
}

// String renders the address as "Name <email>" or a bare address.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}

// Attachment represents a file attachment.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Parse parses raw MIME data into a Msg. A message whose body cannot be
// decoded still parses: enmime records such problems as non-fatal errors and
// the body fields stay empty.
func Parse(raw []byte) (*Msg, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	m := &Msg{
		Subject:   env.GetHeader("Subject"),
		MessageID: strings.Trim(env.GetHeader("Message-ID"), "<>"),
		InReplyTo: strings.Trim(env.GetHeader("In-Reply-To"), "<>"),
		BodyText:  env.Text,
		BodyHTML:  env.HTML,
		Raw:       raw,
	}

	if dateStr := env.GetHeader("Date"); dateStr != "" {
		if t, err := parseDate(dateStr); err == nil {
			m.Date = t
		}
	}

	m.From = parseAddressList(env, "From")
	m.To = parseAddressList(env, "To")
	m.Cc = parseAddressList(env, "Cc")
	m.Bcc = parseAddressList(env, "Bcc")
	m.ReplyTo = parseAddressList(env, "Reply-To")

	if refs := env.GetHeader("References"); refs != "" {
		m.References = parseReferences(refs)
	}

	m.Attachments = append(m.Attachments, processParts(env.Attachments)...)
	m.Attachments = append(m.Attachments, processParts(env.Inlines)...)

	return m, nil
}

// Sender returns the first From address, or the zero Address.
func (m *Msg) Sender() Address {
	if len(m.From) == 0 {
		return Address{}
	}
	return m.From[0]
}

// parseAddressList parses an address header using enmime's AddressList method.
func parseAddressList(env *enmime.Envelope, header string) []Address {
	list, err := env.AddressList(header)
	if err != nil || list == nil {
		return nil
	}
	addresses := make([]Address, 0, len(list))
	for _, addr := range list {
		if addr.Address == "" {
			continue
		}
		addresses = append(addresses, Address{
			Name:  addr.Name,
			Email: strings.ToLower(addr.Address),
		})
	}
	return addresses
}

// isBodyPart returns true if the part is body content rather than an
// attachment: text/plain or text/html without a filename and without an
// explicit Content-Disposition: attachment.
func isBodyPart(part *enmime.Part) bool {
	contentType := strings.ToLower(part.ContentType)
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if contentType != "text/plain" && contentType != "text/html" {
		return false
	}
	if part.FileName != "" {
		return false
	}
	disposition := strings.ToLower(part.Disposition)
	if idx := strings.Index(disposition, ";"); idx >= 0 {
		disposition = strings.TrimSpace(disposition[:idx])
	}
	return disposition != "attachment"
}

// processParts filters body parts and converts the rest to Attachments.
func processParts(parts []*enmime.Part) []Attachment {
	var result []Attachment
	for _, part := range parts {
		if isBodyPart(part) {
			continue
		}
		result = append(result, Attachment{
			Filename:    part.FileName,
			ContentType: part.ContentType,
			Content:     part.Content,
		})
	}
	return result
}

// parseReferences parses the References header into individual message IDs.
func parseReferences(refs string) []string {
	var result []string
	for _, ref := range strings.Fields(refs) {
		ref = strings.Trim(ref, "<>")
		if ref != "" {
			result = append(result, ref)
		}
	}
	return result
}

// dateFormats lists common email date formats for parseDate.
var dateFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"02 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
}

// parseDate tries each known format, stripping a trailing "(TZ)" comment.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "("); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	var lastErr error
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
