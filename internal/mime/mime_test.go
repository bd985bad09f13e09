package mime

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

const multipartMessage = "From: Alice Example <alice@example.org>\r\n" +
	"To: bob@example.org\r\n" +
	"Cc: carol@example.org\r\n" +
	"Subject: =?utf-8?q?caf=C3=A9?= plans\r\n" +
	"Date: Wed, 13 Mar 2024 10:00:00 +0000\r\n" +
	"Message-ID: <m2@example.org>\r\n" +
	"In-Reply-To: <m1@example.org>\r\n" +
	"References: <m0@example.org> <m1@example.org>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"See you at noon.\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<p>See you at noon.</p>\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=menu.pdf\r\n" +
	"\r\n" +
	"0123456789\r\n" +
	"--XYZ--\r\n"

func TestParseMultipart(t *testing.T) {
	p, err := Parse(strings.NewReader(multipartMessage))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	h := p.Header
	if h.Subject != "café plans" {
		t.Errorf("subject = %q", h.Subject)
	}
	if h.MessageID != "m2@example.org" || h.InReplyTo != "m1@example.org" {
		t.Errorf("ids = %q / %q", h.MessageID, h.InReplyTo)
	}
	if len(h.References) != 2 || h.References[0] != "m0@example.org" {
		t.Errorf("references = %v", h.References)
	}
	if !h.Date.Equal(time.Date(2024, time.March, 13, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", h.Date)
	}
	if h.Cc != "carol@example.org" {
		t.Errorf("cc = %q", h.Cc)
	}
	if p.Author != "Alice Example" {
		t.Errorf("author = %q", p.Author)
	}

	if got := p.PlainText(); strings.TrimSpace(got) != "See you at noon." {
		t.Errorf("plain text = %q", got)
	}
	atts := p.Attachments()
	if len(atts) != 1 || atts[0].Filename != "menu.pdf" || atts[0].ContentType != "application/pdf" {
		t.Fatalf("attachments = %+v", atts)
	}
	if atts[0].Size == 0 {
		t.Error("attachment size not recorded")
	}
}

func TestParseSinglePart(t *testing.T) {
	raw := "From: bob@example.org\r\nSubject: hi\r\n\r\nline one\r\nline two\r\n"
	p, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Author != "bob@example.org" {
		t.Errorf("author = %q", p.Author)
	}
	if p.PlainText() != "line one\nline two\n" {
		t.Errorf("body = %q", p.PlainText())
	}
}

func TestComposeRoundTrip(t *testing.T) {
	d := Draft{
		From:       "Alice <alice@example.org>",
		To:         "bob@example.org, Carol <carol@example.org>",
		Subject:    "Re: plans",
		Body:       "Sounds good.\n",
		InReplyTo:  "m1@example.org",
		References: []string{"m0@example.org", "m1@example.org"},
		Date:       time.Date(2024, time.March, 13, 11, 0, 0, 0, time.UTC),
	}
	raw, err := Compose(d)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	p, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Header.Subject != d.Subject || p.Header.InReplyTo != d.InReplyTo {
		t.Errorf("header = %+v", p.Header)
	}
	if len(p.Header.References) != 2 {
		t.Errorf("references = %v", p.Header.References)
	}
	if !strings.HasSuffix(p.Header.MessageID, "@example.org") {
		t.Errorf("generated message id = %q", p.Header.MessageID)
	}
	if !strings.Contains(p.Header.To, "carol@example.org") {
		t.Errorf("to = %q", p.Header.To)
	}
	if strings.TrimSpace(p.PlainText()) != "Sounds good." {
		t.Errorf("body = %q", p.PlainText())
	}
}

func TestComposeWithAttachment(t *testing.T) {
	raw, err := Compose(Draft{
		From:    "alice@example.org",
		To:      "bob@example.org",
		Subject: "files",
		Body:    "attached",
		Attachments: []Attachment{
			{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("hello")},
		},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	p, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	atts := p.Attachments()
	if len(atts) != 1 || atts[0].Filename != "notes.txt" || atts[0].Size != 5 {
		t.Errorf("attachments = %+v", atts)
	}
	if strings.TrimSpace(p.PlainText()) != "attached" {
		t.Errorf("body = %q", p.PlainText())
	}
}

func TestComposeRejectsBadFrom(t *testing.T) {
	if _, err := Compose(Draft{From: "", To: "bob@example.org"}); err == nil {
		t.Error("expected error for empty From")
	}
}

func TestReplyHelpers(t *testing.T) {
	if got := ReplySubject("plans"); got != "Re: plans" {
		t.Errorf("ReplySubject = %q", got)
	}
	if got := ReplySubject("RE: plans"); got != "RE: plans" {
		t.Errorf("ReplySubject kept prefix = %q", got)
	}

	q := Quote("Bob", time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC), "hi\n> earlier\n")
	want := "On Wed, Mar 13, 2024 at 09:00, Bob wrote:\n> hi\n>> earlier\n"
	if q != want {
		t.Errorf("Quote = %q, want %q", q, want)
	}

	if got := Signature("Bob\n", true); got != "\n-- \nBob\n" {
		t.Errorf("Signature with dashes = %q", got)
	}
	if got := Signature("Bob", false); got != "\nBob\n" {
		t.Errorf("Signature = %q", got)
	}
	if Signature("", true) != "" {
		t.Error("empty signature should stay empty")
	}
}

func TestParseFoldsHeadersOntoOneLine(t *testing.T) {
	raw := "From: \"Alice\tExample\" <alice@example.org>\r\n" +
		"To: bob@example.org,\r\n\tcarol@example.org\r\n" +
		"Subject: a long\r\n\tfolded  subject\r\n" +
		"\r\n" +
		"body\r\n"

	p, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Header.Subject != "a long folded subject" {
		t.Errorf("subject = %q", p.Header.Subject)
	}
	if p.Header.To != "bob@example.org, carol@example.org" {
		t.Errorf("to = %q", p.Header.To)
	}
	if p.Author != "Alice Example" {
		t.Errorf("author = %q", p.Author)
	}
}
