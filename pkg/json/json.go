// Package json wraps goccy/go-json with pooled buffers for the API layer
package json

import (
	"bytes"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 1024))
	},
}

// maxPooledBuffer is the largest buffer returned to the pool
const maxPooledBuffer = 64 * 1024

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	bufferPool.Put(buf)
}

// Marshal is a drop-in replacement for encoding/json.Marshal
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalIndent is a drop-in replacement for encoding/json.MarshalIndent
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// Unmarshal is a drop-in replacement for encoding/json.Unmarshal
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}

// MarshalToWriter encodes v into a pooled buffer and writes it to w in a
// single call, so a failed encode never leaves a partial document behind.
// HTML characters are not escaped and a trailing newline is written.
func MarshalToWriter(w io.Writer, v interface{}) error {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := gojson.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// DecodeStrict decodes a single JSON document from r into v, rejecting
// unknown fields and trailing data.
func DecodeStrict(r io.Reader, v interface{}) error {
	dec := gojson.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return &TrailingDataError{}
	}
	return nil
}

// TrailingDataError is returned by DecodeStrict when the input holds more
// than one JSON value.
type TrailingDataError struct{}

func (*TrailingDataError) Error() string {
	return "unexpected data after JSON value"
}

// StreamingEncoder writes newline-delimited JSON values
type StreamingEncoder struct {
	enc *gojson.Encoder
}

// NewStreamingEncoder creates a new streaming encoder writing to w
func NewStreamingEncoder(w io.Writer) *StreamingEncoder {
	enc := gojson.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &StreamingEncoder{enc: enc}
}

// SetPretty enables indented output
func (se *StreamingEncoder) SetPretty(indent string) {
	se.enc.SetIndent("", indent)
}

// Encode writes v followed by a newline
func (se *StreamingEncoder) Encode(v interface{}) error {
	return se.enc.Encode(v)
}
