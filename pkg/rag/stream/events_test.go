package stream

import (
	"encoding/json"
	"testing"

	"fidesia-be/pkg/rag/sources"
)

func TestEventWireShapes(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{
			name: "chunk carries content",
			ev:   Event{Type: EventChunk, Content: "Au commencement"},
			want: `{"type":"chunk","content":"Au commencement"}`,
		},
		{
			name: "done carries nothing else",
			ev:   Event{Type: EventDone},
			want: `{"type":"done"}`,
		},
		{
			name: "empty sources serialize as an empty list, not null",
			ev:   Event{Type: EventSources},
			want: `{"type":"sources","sources_with_scores":[]}`,
		},
		{
			name: "sources carry provenance and score",
			ev: Event{Type: EventSources, Sources: []sources.Reference{
				{FileName: "somme.pdf", RelativePath: "aquin/somme.pdf", Score: 0.75},
			}},
			want: `{"type":"sources","sources_with_scores":[{"file_name":"somme.pdf","relative_path":"aquin/somme.pdf","score":0.75}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.ev)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
