// Package attachment stages pending evidence (photos, documents) for the
// transition currently being prepared on a job. State lives only for the
// duration of one in-progress transition; the engine clears it on a
// successful commit.
package attachment

import (
	"fmt"
	"sync"
)

type Kind string

const (
	KindImage    Kind = "image"
	KindDocument Kind = "document"
)

// Attachment is one staged evidence item. URI is a local resource handle
// produced by the capture collaborators (camera, gallery, file picker).
type Attachment struct {
	URI      string `json:"uri"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	MimeType string `json:"mimeType,omitempty"`
}

// ContentType returns the mime type to submit for the attachment, falling
// back by kind when the capture collaborator did not report one.
func (a Attachment) ContentType() string {
	if a.MimeType != "" {
		return a.MimeType
	}
	if a.Kind == KindImage {
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// Collector is the ordered list of staged attachments for one job.
// Insertion order is display order. No deduplication and no type validation:
// acceptable file types are the capture collaborators' concern.
type Collector struct {
	mu    sync.Mutex
	items []Attachment
}

func (c *Collector) Add(item Attachment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

func (c *Collector) RemoveAt(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("attachment index %d out of range", index)
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Collector) List() []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Attachment, len(c.items))
	copy(items, c.items)
	return items
}

func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Registry hands out one collector per job so evidence staged for one job
// never leaks into another.
type Registry struct {
	mu         sync.Mutex
	collectors map[int64]*Collector
}

func NewRegistry() *Registry {
	return &Registry{collectors: make(map[int64]*Collector)}
}

func (r *Registry) ForJob(jobID int64) *Collector {
	r.mu.Lock()
	defer r.mu.Unlock()
	collector, ok := r.collectors[jobID]
	if !ok {
		collector = &Collector{}
		r.collectors[jobID] = collector
	}
	return collector
}
