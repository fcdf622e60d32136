package quiz

import (
	"errors"
	"net/url"
	"unicode/utf8"
)

var errInvalidUTF8 = errors.New("invalid utf-8 sequence")

// Decode decodes a percent-encoded text payload.
// A '+' is kept literally and escapes must form valid UTF-8.
func Decode(s string) (string, error) {
	out, err := url.PathUnescape(s)
	if err != nil {
		return "", &DecodeError{Text: s, Err: err}
	}
	if !utf8.ValidString(out) {
		return "", &DecodeError{Text: s, Err: errInvalidUTF8}
	}
	return out, nil
}
