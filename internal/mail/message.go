package mail

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// ParseAddress splits an RFC 5322 From header of the shape
// `"Display Name" <addr@host>` into (name, email). A bare address with
// no angle brackets is returned as both name and email; a header that
// matches neither shape falls back to the raw value.
func ParseAddress(header string) (name, email string) {
	header = strings.TrimSpace(header)

	open := strings.LastIndex(header, "<")
	end := strings.LastIndex(header, ">")
	if open >= 0 && end > open {
		email = strings.TrimSpace(header[open+1 : end])
		name = strings.TrimSpace(header[:open])
		name = strings.Trim(name, `"`)
		if name == "" {
			name = email
		}
		return name, email
	}
	return header, header
}

// extractPlainBody returns the message's plain-text body: the top-level
// body when the payload itself is text/plain, otherwise the first
// text/plain leaf found by depth-first search over the part tree.
// Returns "" when no plain-text part exists.
func extractPlainBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := extractPlainBody(child); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody decodes Gmail's base64url body data. Gmail omits padding
// but some payloads carry it, so both forms are accepted.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

// encodeRaw produces the provider's raw-message encoding: base64url
// with trailing padding stripped.
func encodeRaw(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// BuildRaw assembles a minimal RFC 822 plain-text message.
func BuildRaw(from, to, subject, body string, inReplyTo string) []byte {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\r\n", from)
	}
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	if inReplyTo != "" {
		fmt.Fprintf(&b, "In-Reply-To: %s\r\n", inReplyTo)
		fmt.Fprintf(&b, "References: %s\r\n", inReplyTo)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
