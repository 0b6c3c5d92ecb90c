package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"
)

// MediaInput is an immutable binary image payload plus its MIME type. It is
// read once per request and never mutated.
type MediaInput struct {
	Data []byte
	MIME string
}

// Present reports whether the input carries any payload.
func (m MediaInput) Present() bool { return len(m.Data) > 0 }

// Fingerprint returns a stable content hash used to decide whether a cached
// analysis result still belongs to the same reference image.
func (m MediaInput) Fingerprint() string {
	if !m.Present() {
		return ""
	}
	sum := sha256.Sum256(m.Data)
	return hex.EncodeToString(sum[:])
}

// Artifact is the image result of one generation or refinement call. It is
// replaced wholesale on refinement, never mutated in place.
type Artifact struct {
	Data      []byte
	MIME      string
	CreatedAt time.Time
}

// NewArtifact stamps an artifact with the current time.
func NewArtifact(data []byte, mime string) *Artifact {
	if mime == "" {
		mime = "image/png"
	}
	return &Artifact{Data: data, MIME: mime, CreatedAt: time.Now().UTC()}
}

// DataURI encodes the artifact as a self-describing image reference so callers
// never need a side channel to interpret the bytes.
func (a *Artifact) DataURI() string {
	if a == nil || len(a.Data) == 0 {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", a.MIME, base64.StdEncoding.EncodeToString(a.Data))
}

// AsMediaInput exposes the artifact bytes as conditioning input for a
// refinement call.
func (a *Artifact) AsMediaInput() MediaInput {
	if a == nil {
		return MediaInput{}
	}
	return MediaInput{Data: a.Data, MIME: a.MIME}
}
