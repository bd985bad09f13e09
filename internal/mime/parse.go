// Package mime turns raw RFC 5322 blobs into headers and typed parts and
// builds outgoing messages.
package mime

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Header holds the decoded header fields views display and ingest indexes.
type Header struct {
	From       string
	To         string
	Cc         string
	Subject    string
	Date       time.Time
	MessageID  string
	InReplyTo  string
	References []string
}

// Part is a TextPart or an AttachmentPart.
type Part interface {
	part()
}

// TextPart is an inline text/* body.
type TextPart struct {
	ContentType string
	Text        string
}

// AttachmentPart describes an attachment without keeping its content.
type AttachmentPart struct {
	Filename    string
	ContentType string
	Size        int64
}

func (TextPart) part()       {}
func (AttachmentPart) part() {}

// Parsed is a decoded message.
type Parsed struct {
	Header Header

	// Author is the display name of the first sender, or its address.
	Author string

	Parts []Part
}

// PlainText joins the text/plain parts. When there are none it falls back
// to any other text part.
func (p *Parsed) PlainText() string {
	var plain, other []string
	for _, part := range p.Parts {
		tp, ok := part.(TextPart)
		if !ok {
			continue
		}
		if tp.ContentType == "text/plain" {
			plain = append(plain, tp.Text)
		} else {
			other = append(other, tp.Text)
		}
	}
	if len(plain) == 0 {
		plain = other
	}
	return strings.Join(plain, "\n")
}

// Attachments returns the attachment parts.
func (p *Parsed) Attachments() []AttachmentPart {
	var out []AttachmentPart
	for _, part := range p.Parts {
		if a, ok := part.(AttachmentPart); ok {
			out = append(out, a)
		}
	}
	return out
}

// ParseFile reads and parses the message stored at path.
func ParseFile(path string) (*Parsed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening message: %w", err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a message. Parts in unknown charsets are kept undecoded;
// a damaged part ends the part list without failing the message.
func Parse(r io.Reader) (*Parsed, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("reading message header: %w", err)
	}
	defer mr.Close()

	parsed := &Parsed{Header: parseHeader(mr.Header)}
	parsed.Author = author(mr.Header)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if (err != nil && !message.IsUnknownCharset(err)) || part == nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			if contentType == "" {
				contentType = "text/plain"
			}
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			if !strings.HasPrefix(contentType, "text/") {
				parsed.Parts = append(parsed.Parts, AttachmentPart{
					ContentType: contentType,
					Size:        int64(len(body)),
				})
				continue
			}
			parsed.Parts = append(parsed.Parts, TextPart{
				ContentType: contentType,
				Text:        normalizeNewlines(body),
			})

		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()

			n, readErr := io.Copy(io.Discard, part.Body)
			if readErr != nil {
				continue
			}
			parsed.Parts = append(parsed.Parts, AttachmentPart{
				Filename:    filename,
				ContentType: contentType,
				Size:        n,
			})
		}
	}

	return parsed, nil
}

func parseHeader(h mail.Header) Header {
	out := Header{}
	out.From = headerText(h, "From")
	out.To = headerText(h, "To")
	out.Cc = headerText(h, "Cc")
	subject, _ := h.Subject()
	out.Subject = singleLine(subject)
	out.Date, _ = h.Date()
	out.MessageID, _ = h.MessageID()
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		out.InReplyTo = ids[0]
	}
	out.References, _ = h.MsgIDList("References")
	return out
}

func author(h mail.Header) string {
	addrs, err := h.AddressList("From")
	if err != nil || len(addrs) == 0 {
		return headerText(h, "From")
	}
	if addrs[0].Name != "" {
		return singleLine(addrs[0].Name)
	}
	return addrs[0].Address
}

func headerText(h mail.Header, key string) string {
	v, _ := h.Text(key)
	return singleLine(v)
}

// singleLine turns folding whitespace and other control characters into
// single spaces so header values draw on one row.
func singleLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || unicode.IsControl(r)
	}), " ")
}

func normalizeNewlines(b []byte) string {
	return string(bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n")))
}
