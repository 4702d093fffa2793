package tpl

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/igbanam/himalaya/internal/config"
	"github.com/igbanam/himalaya/internal/msg"
)

func testAccount() *config.Account {
	return &config.Account{
		Name:  "Me Myself",
		Email: "me@example.com",
	}
}

func sourceMsg() *msg.Msg {
	return &msg.Msg{
		Subject:   "hi",
		Date:      time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
		From:      []msg.Address{{Name: "Alice", Email: "alice@x.com"}},
		To:        []msg.Address{{Email: "me@example.com"}, {Email: "bob@x.com"}},
		Cc:        []msg.Address{{Email: "carol@x.com"}},
		MessageID: "orig-id@x.com",
		BodyText:  "first line\nsecond line",
	}
}

func TestNew(t *testing.T) {
	tpl := New(testAccount())
	if tpl.Kind != KindNew {
		t.Errorf("Kind = %v, want KindNew", tpl.Kind)
	}
	if tpl.From != "Me Myself <me@example.com>" {
		t.Errorf("From = %q", tpl.From)
	}
	if tpl.Body != "" || len(tpl.To) != 0 {
		t.Errorf("new template should be empty, got To=%v Body=%q", tpl.To, tpl.Body)
	}
}

func TestReply(t *testing.T) {
	tpl := Reply(testAccount(), sourceMsg(), false)

	if tpl.Kind != KindReply {
		t.Errorf("Kind = %v, want KindReply", tpl.Kind)
	}
	if diff := cmp.Diff([]string{"Alice <alice@x.com>"}, tpl.To); diff != "" {
		t.Errorf("To mismatch (-want +got):\n%s", diff)
	}
	if tpl.Subject != "Re: hi" {
		t.Errorf("Subject = %q, want %q", tpl.Subject, "Re: hi")
	}
	if tpl.InReplyTo != "orig-id@x.com" {
		t.Errorf("InReplyTo = %q", tpl.InReplyTo)
	}
	if diff := cmp.Diff([]string{"orig-id@x.com"}, tpl.References); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}
	for _, line := range []string{"> first line", "> second line"} {
		if !strings.Contains(tpl.Body, line) {
			t.Errorf("Body missing quoted line %q:\n%s", line, tpl.Body)
		}
	}
	if !strings.Contains(tpl.Body, "Alice <alice@x.com> wrote:") {
		t.Errorf("Body missing attribution:\n%s", tpl.Body)
	}
}

func TestReplySubjectNeverDoublePrefixes(t *testing.T) {
	for _, subject := range []string{"Re: hi", "re: hi", "RE: hi"} {
		source := sourceMsg()
		source.Subject = subject
		tpl := Reply(testAccount(), source, false)
		if tpl.Subject != subject {
			t.Errorf("Reply(subject=%q).Subject = %q, want unchanged", subject, tpl.Subject)
		}
	}
}

func TestReplyAllExcludesSelf(t *testing.T) {
	tpl := Reply(testAccount(), sourceMsg(), true)

	if tpl.Kind != KindReplyAll {
		t.Errorf("Kind = %v, want KindReplyAll", tpl.Kind)
	}
	want := []string{"Alice <alice@x.com>", "bob@x.com", "carol@x.com"}
	if diff := cmp.Diff(want, tpl.To); diff != "" {
		t.Errorf("To mismatch (-want +got):\n%s", diff)
	}
	for _, to := range tpl.To {
		if strings.Contains(to, "me@example.com") {
			t.Errorf("reply-all must exclude self, got %v", tpl.To)
		}
	}
}

func TestReplyExtendsReferences(t *testing.T) {
	source := sourceMsg()
	source.References = []string{"first@x.com", "second@x.com"}
	tpl := Reply(testAccount(), source, false)
	want := []string{"first@x.com", "second@x.com", "orig-id@x.com"}
	if diff := cmp.Diff(want, tpl.References); diff != "" {
		t.Errorf("References mismatch (-want +got):\n%s", diff)
	}
}

func TestReplyDegradedBody(t *testing.T) {
	source := sourceMsg()
	source.BodyText = ""
	tpl := Reply(testAccount(), source, false)
	if !strings.Contains(tpl.Body, "wrote:") {
		t.Errorf("degraded reply should keep the attribution line:\n%q", tpl.Body)
	}
	if strings.Contains(tpl.Body, "> ") {
		t.Errorf("degraded reply should carry no quoted lines:\n%q", tpl.Body)
	}
}

func TestForward(t *testing.T) {
	source := sourceMsg()
	source.Attachments = []msg.Attachment{{
		Filename:    "data.bin",
		ContentType: "application/octet-stream",
		Content:     []byte{0x00, 0x01, 0xfe, 0xff},
	}}

	tpl := Forward(testAccount(), source, true)
	if tpl.Subject != "Fwd: hi" {
		t.Errorf("Subject = %q, want %q", tpl.Subject, "Fwd: hi")
	}
	if strings.Contains(tpl.Body, "> first line") {
		t.Errorf("forward body must not be quote-prefixed:\n%s", tpl.Body)
	}
	if !strings.Contains(tpl.Body, "first line\nsecond line") {
		t.Errorf("forward body must carry the original body:\n%s", tpl.Body)
	}
	if diff := cmp.Diff(source.Attachments, tpl.Attachments); diff != "" {
		t.Errorf("attachments not carried verbatim (-want +got):\n%s", diff)
	}

	// Without the flag, attachments are omitted.
	plain := Forward(testAccount(), source, false)
	if len(plain.Attachments) != 0 {
		t.Errorf("attachments should be omitted, got %d", len(plain.Attachments))
	}
}

func TestForwardSubjectNeverDoublePrefixes(t *testing.T) {
	source := sourceMsg()
	source.Subject = "Fwd: hi"
	tpl := Forward(testAccount(), source, false)
	if tpl.Subject != "Fwd: hi" {
		t.Errorf("Subject = %q, want unchanged", tpl.Subject)
	}
}

func TestFromMailto(t *testing.T) {
	tpl, err := FromMailto(testAccount(), "mailto:a@x.com?subject=Hi%20there")
	if err != nil {
		t.Fatalf("FromMailto failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a@x.com"}, tpl.To); diff != "" {
		t.Errorf("To mismatch (-want +got):\n%s", diff)
	}
	if tpl.Subject != "Hi there" {
		t.Errorf("Subject = %q, want %q", tpl.Subject, "Hi there")
	}
}

func TestFromMailtoAllKeys(t *testing.T) {
	uri := "mailto:a@x.com?to=b@x.com&cc=c@x.com&bcc=d@x.com&subject=S&body=line%0Atwo&x-unknown=zzz"
	tpl, err := FromMailto(testAccount(), uri)
	if err != nil {
		t.Fatalf("FromMailto failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a@x.com", "b@x.com"}, tpl.To); diff != "" {
		t.Errorf("To mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c@x.com"}, tpl.Cc); diff != "" {
		t.Errorf("Cc mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d@x.com"}, tpl.Bcc); diff != "" {
		t.Errorf("Bcc mismatch (-want +got):\n%s", diff)
	}
	if tpl.Body != "line\ntwo" {
		t.Errorf("Body = %q", tpl.Body)
	}
}

func TestFromMailtoErrors(t *testing.T) {
	for _, uri := range []string{"https://x.com", "mailto:a%zz@x.com"} {
		if _, err := FromMailto(testAccount(), uri); err == nil {
			t.Errorf("FromMailto(%q) = nil error, want failure", uri)
		}
	}
}

func TestTemplateEditRoundTrip(t *testing.T) {
	tpl := Reply(testAccount(), sourceMsg(), false)
	text := tpl.String()

	// Simulate an edit: change the subject line, keep everything else.
	edited := strings.Replace(text, "Subject: Re: hi", "Subject: Re: hi (edited)", 1)
	if err := tpl.Parse(edited); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if tpl.Subject != "Re: hi (edited)" {
		t.Errorf("Subject = %q after edit", tpl.Subject)
	}
	if tpl.InReplyTo != "orig-id@x.com" {
		t.Errorf("InReplyTo lost in round trip: %q", tpl.InReplyTo)
	}
	if !strings.Contains(tpl.Body, "> first line") {
		t.Errorf("body lost in round trip:\n%s", tpl.Body)
	}
}

func TestBuildAndRaw(t *testing.T) {
	tpl := New(testAccount())
	tpl.To = []string{"a@x.com"}
	tpl.Subject = "ping"
	tpl.Body = "pong"
	tpl.Attachments = []msg.Attachment{{Filename: "f.txt", Content: []byte("payload")}}

	raw, err := tpl.Raw()
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	for _, want := range []string{"Subject: ping", "To: a@x.com", "pong", "f.txt"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("raw message missing %q", want)
		}
	}
}

func TestBuildRequiresRecipient(t *testing.T) {
	tpl := New(testAccount())
	if _, err := tpl.Build(); err == nil {
		t.Error("Build with no recipients = nil error, want failure")
	}
}
