package mime

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Attachment is file content to include in an outgoing message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Draft holds the fields of an outgoing message. Address fields accept
// comma-separated RFC 5322 address lists.
type Draft struct {
	From       string
	To         string
	Cc         string
	Bcc        string
	Subject    string
	Body       string
	InReplyTo  string
	References []string
	Date       time.Time

	// MessageID is generated when empty.
	MessageID string

	Attachments []Attachment
}

// Compose builds the RFC 5322 blob for d. Messages without attachments
// are written as a single text/plain part.
func Compose(d Draft) ([]byte, error) {
	var h mail.Header

	from, err := mail.ParseAddressList(d.From)
	if err != nil || len(from) == 0 {
		return nil, fmt.Errorf("parsing From %q: invalid address", d.From)
	}
	h.SetAddressList("From", from)

	for _, field := range []struct{ key, value string }{
		{"To", d.To}, {"Cc", d.Cc}, {"Bcc", d.Bcc},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		addrs, err := mail.ParseAddressList(field.value)
		if err != nil {
			return nil, fmt.Errorf("parsing %s %q: %w", field.key, field.value, err)
		}
		h.SetAddressList(field.key, addrs)
	}

	date := d.Date
	if date.IsZero() {
		date = time.Now()
	}
	h.SetDate(date)
	h.SetSubject(d.Subject)

	id := d.MessageID
	if id == "" {
		id = NewMessageID(from[0].Address)
	}
	h.SetMessageID(id)

	if d.InReplyTo != "" {
		h.SetMsgIDList("In-Reply-To", []string{d.InReplyTo})
	}
	if len(d.References) > 0 {
		h.SetMsgIDList("References", d.References)
	}

	var buf bytes.Buffer
	if len(d.Attachments) == 0 {
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := mail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
		if err := writeAndClose(w, []byte(d.Body)); err != nil {
			return nil, fmt.Errorf("writing body: %w", err)
		}
		return buf.Bytes(), nil
	}

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	iw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("creating inline part: %w", err)
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	tw, err := iw.CreatePart(th)
	if err != nil {
		return nil, fmt.Errorf("creating text part: %w", err)
	}
	if err := writeAndClose(tw, []byte(d.Body)); err != nil {
		return nil, fmt.Errorf("writing body: %w", err)
	}
	if err := iw.Close(); err != nil {
		return nil, fmt.Errorf("closing inline part: %w", err)
	}

	for _, a := range d.Attachments {
		var ah mail.AttachmentHeader
		contentType := a.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		ah.SetContentType(contentType, nil)
		ah.SetFilename(a.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("creating attachment %s: %w", a.Filename, err)
		}
		if err := writeAndClose(aw, a.Data); err != nil {
			return nil, fmt.Errorf("writing attachment %s: %w", a.Filename, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing message: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAndClose(w io.WriteCloser, data []byte) error {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// NewMessageID returns a unique message id in the domain of address.
func NewMessageID(address string) string {
	domain := "localhost"
	if _, d, ok := strings.Cut(address, "@"); ok && d != "" {
		domain = d
	}
	return uuid.NewString() + "@" + domain
}

// ReplySubject prefixes subject with "Re: " unless it already has one.
func ReplySubject(subject string) string {
	if len(subject) >= 3 && strings.EqualFold(subject[:3], "re:") {
		return subject
	}
	return "Re: " + subject
}

// Quote prefixes every line of body with "> " under an attribution line.
func Quote(author string, date time.Time, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "On %s, %s wrote:\n", date.Format("Mon, Jan 02, 2006 at 15:04"), author)
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if strings.HasPrefix(line, ">") {
			b.WriteString(">" + line + "\n")
		} else {
			b.WriteString("> " + line + "\n")
		}
	}
	return b.String()
}

// Signature returns sig prepared for appending to a body, with a "-- "
// separator line when dashes is set.
func Signature(sig string, dashes bool) string {
	sig = strings.TrimRight(sig, "\n")
	if sig == "" {
		return ""
	}
	if dashes {
		return "\n-- \n" + sig + "\n"
	}
	return "\n" + sig + "\n"
}
