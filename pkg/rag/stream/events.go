package stream

import (
	"encoding/json"

	"fidesia-be/pkg/rag/sources"
)

type EventType string

const (
	EventChunk   EventType = "chunk"
	EventSources EventType = "sources"
	EventDone    EventType = "done"
	EventError   EventType = "error"
)

// Event is one element of the server-push sequence sent to the client.
// The wire shape depends on the type:
//
//	{"type":"chunk","content":"..."}
//	{"type":"sources","sources_with_scores":[{file_name,relative_path,score},...]}
//	{"type":"done"}
//	{"type":"error","content":"..."}
type Event struct {
	Type    EventType
	Content string
	Sources []sources.Reference
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventSources:
		refs := e.Sources
		if refs == nil {
			refs = []sources.Reference{}
		}
		return json.Marshal(struct {
			Type    EventType           `json:"type"`
			Sources []sources.Reference `json:"sources_with_scores"`
		}{e.Type, refs})
	case EventDone:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	default:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Content string    `json:"content"`
		}{e.Type, e.Content})
	}
}
