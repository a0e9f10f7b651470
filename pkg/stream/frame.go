package stream

import "jyotchat-be/pkg/store"

type Kind string

const (
	KindText    Kind = "text"
	KindEvent   Kind = "events"
	KindSources Kind = "sources"
)

// Frame is one unit of the client-facing stream.
type Frame struct {
	Kind    Kind
	Text    string           // KindText
	Title   string           // KindEvent
	Sources []store.Evidence // KindSources
}

func TextFrame(token string) Frame {
	return Frame{Kind: KindText, Text: token}
}

func EventFrame(title string) Frame {
	return Frame{Kind: KindEvent, Title: title}
}

func SourcesFrame(evidence []store.Evidence) Frame {
	return Frame{Kind: KindSources, Sources: evidence}
}
