// Package codec centralizes JSON encoding for rendered values, inspector
// payloads and stream envelopes. Adapters that write values onto external
// surfaces (files, topics, subjects) all funnel through it so the encoding
// stays consistent across targets.
package codec

import (
	"io"

	"github.com/bytedance/sonic"
)

var defaultConfig = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return defaultConfig.Marshal(v)
}

func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return defaultConfig.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v any) error {
	return defaultConfig.Unmarshal(data, v)
}

func Encode(w io.Writer, v any) error {
	enc := defaultConfig.NewEncoder(w)
	return enc.Encode(v)
}

func Decode(r io.Reader, v any) error {
	dec := defaultConfig.NewDecoder(r)
	return dec.Decode(v)
}

// EncodeToString renders v as a single compact line. Strings pass through
// unquoted so text-oriented targets show them as-is; everything else is JSON.
func EncodeToString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	raw, err := defaultConfig.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
