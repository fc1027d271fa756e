// Package upload tracks in-flight chunked upload sessions. State lives only
// in memory: a restart drops every session and clients must re-initialize.
// The blob store garbage-collects multipart uploads that were never completed.
package upload

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"filevault-api/internal/domain/item"
	"filevault-api/internal/domain/user"
)

var (
	ErrDuplicateSession = errors.New("upload session already exists")
	ErrUnknownSession   = errors.New("unknown upload session")
)

type (
	// Part is one finalized chunk, numbered the way the blob store expects:
	// part numbers are 1-based, chunk indices from clients are 0-based.
	Part struct {
		Number int32
		ETag   string
	}

	// SessionMeta is the immutable part of a session, captured at init. The
	// target parent is resolved once so a batch upload keeps writing into the
	// same folder even if the tree is reorganized mid-flight.
	SessionMeta struct {
		BlobKey        string
		UploadID       string
		OwnerID        user.ID
		TargetParentID *item.ID
		FileSize       uint64
		CreatedAt      time.Time
	}

	SessionStatus struct {
		SessionID string
		BlobKey   string
		PartCount int
		CreatedAt time.Time
		ExpiresAt time.Time
	}

	Stats struct {
		SessionCount      int
		TotalTrackedParts int
	}

	session struct {
		meta  SessionMeta
		parts map[int]string // chunk index -> etag, last write wins
	}

	// Tracker owns every live session. All state transitions happen under one
	// lock so concurrent chunk arrivals for the same session cannot lose
	// updates. Operations never touch I/O and must stay cheap.
	Tracker struct {
		mu       sync.Mutex
		sessions map[string]*session
		ttl      time.Duration
		sweep    time.Duration
		log      *zap.Logger
	}
)

func NewTracker(ttl, sweepInterval time.Duration, logger *zap.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]*session),
		ttl:      ttl,
		sweep:    sweepInterval,
		log:      logger,
	}
}

func (t *Tracker) InitSession(sessionID string, meta SessionMeta) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[sessionID]; ok {
		return ErrDuplicateSession
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	t.sessions[sessionID] = &session{
		meta:  meta,
		parts: make(map[int]string),
	}

	return nil
}

// RecordPart upserts the etag for a chunk index and returns the distinct part
// count after the write. A retried chunk overwrites its own etag and does not
// inflate the count.
func (t *Tracker) RecordPart(sessionID string, partIndex int, etag string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return 0, ErrUnknownSession
	}
	s.parts[partIndex] = etag

	return len(s.parts), nil
}

// IsComplete reports whether every declared chunk has been recorded. It does
// not check index contiguity: a client that skipped an index simply never
// reaches totalChunks distinct entries.
func (t *Tracker) IsComplete(sessionID string, totalChunks int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return false, ErrUnknownSession
	}

	return len(s.parts) == totalChunks, nil
}

// MissingIndices returns the chunk indices in [0, totalChunks) that have no
// recorded etag, ascending.
func (t *Tracker) MissingIndices(sessionID string, totalChunks int) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}

	var missing []int
	for i := 0; i < totalChunks; i++ {
		if _, ok := s.parts[i]; !ok {
			missing = append(missing, i)
		}
	}

	return missing, nil
}

// ExportParts returns the recorded parts sorted ascending by part number,
// with Number = index + 1.
func (t *Tracker) ExportParts(sessionID string) ([]Part, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}

	parts := make([]Part, 0, len(s.parts))
	for idx, etag := range s.parts {
		parts = append(parts, Part{Number: int32(idx) + 1, ETag: etag})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })

	return parts, nil
}

func (t *Tracker) Meta(sessionID string) (SessionMeta, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return SessionMeta{}, ErrUnknownSession
	}

	return s.meta, nil
}

// Expire removes the session. Returns false if it was already gone. Used for
// successful completion, explicit cancel and TTL expiry alike; there is no way
// back to a live session afterwards.
func (t *Tracker) Expire(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[sessionID]; !ok {
		return false
	}
	delete(t.sessions, sessionID)

	return true
}

func (t *Tracker) Status(sessionID string) (*SessionStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}

	return &SessionStatus{
		SessionID: sessionID,
		BlobKey:   s.meta.BlobKey,
		PartCount: len(s.parts),
		CreatedAt: s.meta.CreatedAt,
		ExpiresAt: s.meta.CreatedAt.Add(t.ttl),
	}, nil
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Stats{SessionCount: len(t.sessions)}
	for _, s := range t.sessions {
		st.TotalTrackedParts += len(s.parts)
	}

	return st
}

// SweepExpired removes every session older than the TTL and returns their
// metadata. One sweep scans the whole map; session counts stay small enough
// that a time-indexed structure is not worth it yet.
func (t *Tracker) SweepExpired(now time.Time) map[string]SessionMeta {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired map[string]SessionMeta
	for id, s := range t.sessions {
		if now.Sub(s.meta.CreatedAt) >= t.ttl {
			if expired == nil {
				expired = make(map[string]SessionMeta)
			}
			expired[id] = s.meta
			delete(t.sessions, id)
		}
	}

	return expired
}

// SweeperWorker expires stale sessions on a ticker until the context is done.
// Expiry only drops tracked state; aborting the remote multipart upload is
// left to the blob store's own lifecycle rules.
func (t *Tracker) SweeperWorker(ctx context.Context) {
	t.log.Info("starting upload session sweeper")

	defer func() {
		t.log.Info("upload session sweeper gracefully stopped")
	}()

	ticker := time.NewTicker(t.sweep)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			for id, meta := range t.SweepExpired(now) {
				t.log.Info("upload session expired",
					zap.String("session_id", id),
					zap.String("blob_key", meta.BlobKey),
					zap.Time("created_at", meta.CreatedAt),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}
