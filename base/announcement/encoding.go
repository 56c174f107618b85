package announcement

import (
	"fmt"
	"net/url"
	"strings"
)

type PayloadEncoding string

const (
	EncodingRaw     PayloadEncoding = "raw"
	EncodingPercent PayloadEncoding = "percent"
)

func ParsePayloadEncoding(s string) (PayloadEncoding, error) {
	switch e := PayloadEncoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingRaw, EncodingPercent:
		return e, nil
	default:
		return "", fmt.Errorf("unknown payload encoding %q", s)
	}
}

func (e PayloadEncoding) Encode(text string) string {
	if e == EncodingPercent {
		return EncodeURIComponent(text)
	}
	return text
}

// url.QueryEscape escapes these, encodeURIComponent keeps them
var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes everything but A-Z a-z 0-9 - _ . ! ~ * ' ( )
func EncodeURIComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}
