// Package charset decodes captured response bodies using the charset declared
// in their Content-Type.
//
// Decoding never fails: when the declared charset is unknown or cannot be
// applied, the bytes are coerced to UTF-8 text and the cause is reported
// alongside the result.
package charset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// Default is the charset used when the content type does not declare one.
const Default = "utf-8"

const byteOrderMark = "\uFEFF"

var charsetPattern = regexp.MustCompile(`charset=([\w-]+)`)

// Decoded is the outcome of decoding a body.
type Decoded struct {
	Text     string
	Charset  string
	Fallback bool
	// Err is the reason the fallback was taken; nil when Fallback is false.
	Err error
}

// FromContentType returns the charset token declared in contentType, or
// Default when there is none. The match is case-sensitive on "charset=".
func FromContentType(contentType string) string {
	m := charsetPattern.FindStringSubmatch(contentType)
	if len(m) < 2 {
		return Default
	}
	return m[1]
}

// Decode converts body to text using the charset declared in contentType.
func Decode(contentType string, body []byte) Decoded {
	name := FromContentType(contentType)

	enc, err := lookup(name)
	if err != nil {
		return fallback(name, body, err)
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return fallback(name, body, fmt.Errorf("decode %s: %w", name, err))
	}

	return Decoded{
		Text:    strings.TrimPrefix(string(out), byteOrderMark),
		Charset: name,
	}
}

// Resolve decodes body and returns its text, logging a warning when the
// fallback was used.
func Resolve(contentType string, body []byte) string {
	d := Decode(contentType, body)
	if d.Fallback {
		log.Warn().Err(d.Err).Str("charset", d.Charset).Msg("failed to decode body, using raw bytes")
	}
	return d.Text
}

func lookup(name string) (encoding.Encoding, error) {
	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", name, err)
	}
	return enc, nil
}

func fallback(name string, body []byte, err error) Decoded {
	return Decoded{
		Text:     strings.ToValidUTF8(string(body), "\uFFFD"),
		Charset:  name,
		Fallback: true,
		Err:      err,
	}
}
