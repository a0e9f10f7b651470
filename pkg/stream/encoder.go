package stream

import (
	"encoding/json"
	"fmt"
	"io"

	"jyotchat-be/pkg/store"
)

// Part prefixes of the Vercel AI data stream protocol.
const (
	prefixText  = "0:"
	prefixError = "3:"
	prefixData  = "8:"
)

// Headers the data stream protocol expects on the response.
var Headers = map[string]string{
	"Content-Type":               "text/plain; charset=utf-8",
	"X-Experimental-Stream-Data": "true",
	"Cache-Control":              "no-cache",
	"X-Accel-Buffering":          "no",
}

type dataPart struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type eventData struct {
	Title string `json:"title"`
}

type sourcesData struct {
	Nodes []store.SourceNode `json:"nodes"`
}

// Encoder writes frames as data stream protocol lines.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

func (e *Encoder) Encode(f Frame) error {
	switch f.Kind {
	case KindText:
		return e.writePart(prefixText, f.Text)
	case KindEvent:
		return e.writePart(prefixData, []dataPart{{Type: string(KindEvent), Data: eventData{Title: f.Title}}})
	case KindSources:
		return e.writePart(prefixData, []dataPart{{Type: string(KindSources), Data: sourcesData{Nodes: store.Nodes(f.Sources)}}})
	default:
		return fmt.Errorf("stream: unknown frame kind %q", f.Kind)
	}
}

// EncodeError writes an error part; the client surfaces msg verbatim.
func (e *Encoder) EncodeError(msg string) error {
	return e.writePart(prefixError, msg)
}

func (e *Encoder) writePart(prefix string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stream: marshal %s part: %w", prefix, err)
	}
	line := make([]byte, 0, len(prefix)+len(b)+1)
	line = append(line, prefix...)
	line = append(line, b...)
	line = append(line, '\n')
	if _, err := e.w.Write(line); err != nil {
		return err
	}
	return nil
}
