package model

import "time"

// SourceKind identifies the medium a Source was ingested from.
type SourceKind string

const (
	SourceAudio SourceKind = "audio"
	SourceVideo SourceKind = "video"
	SourceText  SourceKind = "text"
	SourcePDF   SourceKind = "pdf"
	SourceWeb   SourceKind = "web"
)

// Source is an external collaborator's record of an ingested document; the
// core references it only by ID.
type Source struct {
	ID         string     `json:"id"`
	Kind       SourceKind `json:"kind"`
	Title      string     `json:"title"`
	OriginURL  string     `json:"origin_url,omitempty"`
	IngestedAt time.Time  `json:"ingested_at"`
}
