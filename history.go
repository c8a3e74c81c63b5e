package imagestudio

import (
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is a session-scoped summary of one extracted image.
// Records are immutable once appended; treat Image as read-only.
type HistoryRecord struct {
	ID        string
	Image     []byte
	MIMEType  string
	Kind      Kind
	Prompt    string
	CreatedAt time.Time
}

// NewHistoryRecord creates a record with a fresh ID.
func NewHistoryRecord(img ExtractedImage, kind Kind, prompt string, createdAt time.Time) HistoryRecord {
	return HistoryRecord{
		ID:        uuid.NewString(),
		Image:     img.Data,
		MIMEType:  img.MIMEType,
		Kind:      kind,
		Prompt:    prompt,
		CreatedAt: createdAt,
	}
}

// Caption returns "<kind label> • <timestamp>" for gallery display.
func (r HistoryRecord) Caption() string {
	return r.Kind.Label() + " • " + r.CreatedAt.Format(HistoryTimestampLayout)
}

// PromptPreview returns the prompt cut to n runes, with an ellipsis when
// it was shortened.
func (r HistoryRecord) PromptPreview(n int) string {
	runes := []rune(r.Prompt)
	if len(runes) <= n {
		return r.Prompt
	}
	return string(runes[:n]) + "…"
}

// HistoryStore is an append-only list of records. Insertion order is
// preserved and nothing is deduplicated. Clear is the only removal.
type HistoryStore struct {
	records []HistoryRecord
	mu      sync.RWMutex
}

// NewHistoryStore creates an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append adds one record.
func (h *HistoryStore) Append(rec HistoryRecord) {
	h.AppendAll(rec)
}

// AppendAll adds records in order under a single lock, so readers see
// either none or all of them.
func (h *HistoryStore) AppendAll(recs ...HistoryRecord) {
	if len(recs) == 0 {
		return
	}

	owned := make([]HistoryRecord, len(recs))
	for i, rec := range recs {
		rec.Image = slices.Clone(rec.Image)
		owned[i] = rec
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, owned...)
}

// MostRecentFirst returns a lazy reversed view of the records present at
// call time. Each range over the sequence starts again from the newest.
func (h *HistoryStore) MostRecentFirst() iter.Seq[HistoryRecord] {
	snapshot := h.snapshot()
	return func(yield func(HistoryRecord) bool) {
		for _, rec := range slices.Backward(snapshot) {
			if !yield(rec) {
				return
			}
		}
	}
}

// ListMostRecentFirst returns all records, newest first.
func (h *HistoryStore) ListMostRecentFirst() []HistoryRecord {
	return slices.Collect(h.MostRecentFirst())
}

// Get returns the record with the given ID.
func (h *HistoryStore) Get(id string) (HistoryRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, rec := range h.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return HistoryRecord{}, false
}

// Len returns the number of records.
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Clear removes every record. It cannot be undone.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

func (h *HistoryStore) snapshot() []HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.records)
}
