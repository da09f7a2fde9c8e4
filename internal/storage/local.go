package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pkordes/travel-planner/internal/domain"
)

// Fixed, versionless keys. They match the keys earlier browser builds wrote
// to localStorage so an exported store imports unchanged.
const (
	DocumentKey = "travelAppData"
	ShareIDKey  = "travelAppShareId"
)

// LocalStore round-trips the trip document and the remembered share id
// through a KV. Read failures never reach the caller: a missing, unreadable
// or corrupt value is reported as absent and logged.
type LocalStore struct {
	kv  KV
	log *slog.Logger
}

// NewLocalStore constructs a LocalStore on kv. A nil logger uses slog.Default.
func NewLocalStore(kv KV, log *slog.Logger) *LocalStore {
	if log == nil {
		log = slog.Default()
	}
	return &LocalStore{kv: kv, log: log}
}

// Save serialises doc and overwrites the stored document.
// A storage failure is logged and returned wrapped in
// domain.ErrStorageUnavailable; the caller's in-memory document stays
// authoritative either way.
func (s *LocalStore) Save(ctx context.Context, doc domain.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage.LocalStore.Save: encode: %w", err)
	}
	if err := s.kv.Set(ctx, DocumentKey, string(b)); err != nil {
		s.log.WarnContext(ctx, "local save failed", "error", err)
		return fmt.Errorf("storage.LocalStore.Save: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// Load returns the stored document, or false when there is none or it
// cannot be read or decoded.
func (s *LocalStore) Load(ctx context.Context) (domain.Document, bool) {
	raw, ok, err := s.kv.Get(ctx, DocumentKey)
	if err != nil {
		s.log.WarnContext(ctx, "local load failed", "error", fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err))
		return domain.Document{}, false
	}
	if !ok {
		return domain.Document{}, false
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		s.log.WarnContext(ctx, "discarding stored document", "error", err)
		return domain.Document{}, false
	}
	return doc, true
}

// ShareID returns the remembered share id, if any.
func (s *LocalStore) ShareID(ctx context.Context) (string, bool) {
	id, ok, err := s.kv.Get(ctx, ShareIDKey)
	if err != nil {
		s.log.WarnContext(ctx, "reading share id failed", "error", err)
		return "", false
	}
	return id, ok && id != ""
}

// RememberShareID stores id so collaboration resumes on the next launch.
func (s *LocalStore) RememberShareID(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, ShareIDKey, id); err != nil {
		s.log.WarnContext(ctx, "remembering share id failed", "share_id", id, "error", err)
		return fmt.Errorf("storage.LocalStore.RememberShareID: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// ForgetShareID clears the remembered share id.
func (s *LocalStore) ForgetShareID(ctx context.Context) error {
	if err := s.kv.Delete(ctx, ShareIDKey); err != nil {
		s.log.WarnContext(ctx, "forgetting share id failed", "error", err)
		return fmt.Errorf("storage.LocalStore.ForgetShareID: %w: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

// decodeDocument parses a stored payload. A JSON null or a non-object value
// counts as corrupt.
func decodeDocument(raw string) (domain.Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil || probe == nil {
		return domain.Document{}, fmt.Errorf("%w: not a JSON object", domain.ErrDeserialization)
	}

	var doc domain.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %w", domain.ErrDeserialization, err)
	}
	doc.Normalize()
	return doc, nil
}
