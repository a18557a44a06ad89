// Package codec normalizes the historical on-disk shapes of a record into
// one typed value and serializes back to the current canonical shape. All
// knowledge of legacy formats lives here; a shape mismatch reads as
// "absent", never as an error, so business logic above never sees format
// drift.
package codec

import (
	"context"
	"errors"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/mvickers/leaguedesk/internal/infrastructure/store"
)

// ReadDocument loads a composite record into out. Shapes are tried in
// priority order: field-map hash first, then a JSON-encoded string. Returns
// false when no shape yields a record.
func ReadDocument(ctx context.Context, kv store.KV, key string, out any) (bool, error) {
	fields, ok, err := kv.HashGetAll(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return false, err
	}
	if ok {
		if decodeHashDocument(fields, out) {
			return true, nil
		}
		// A hash that does not decode is treated as absent, same as any
		// other shape mismatch.
	}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if sonic.Unmarshal([]byte(raw), out) != nil {
		return false, nil
	}
	return true, nil
}

// WriteDocument serializes value as a JSON document, the canonical shape for
// composite records. Every write is a forward migration: whatever shape the
// key held before is replaced.
func WriteDocument(ctx context.Context, kv store.KV, key string, value any, ttl time.Duration) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(value); err != nil {
		return err
	}
	return kv.Set(ctx, key, strings.TrimRight(buf.String(), "\n"), ttl)
}

// ReadIDList loads a pure id collection, tolerating every shape the store
// has ever held one in: a native set, a JSON array string, a legacy
// comma-separated string, or a bare scalar id. Falsy and empty entries are
// dropped.
func ReadIDList(ctx context.Context, kv store.KV, key string) ([]string, error) {
	members, ok, err := kv.SetMembers(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return nil, err
	}
	if ok {
		return cleanIDs(members), nil
	}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return cleanIDs(parseLegacyIDString(raw)), nil
}

// WriteIDSet overwrites key with the canonical set shape.
func WriteIDSet(ctx context.Context, kv store.KV, key string, ids []string) error {
	return kv.ReplaceSet(ctx, key, cleanIDs(ids))
}

// ReadDocumentList loads a list of composite records, tolerating the
// canonical JSON array string and the legacy hash-of-JSON-values shape.
func ReadDocumentList[T any](ctx context.Context, kv store.KV, key string) ([]T, error) {
	fields, ok, err := kv.HashGetAll(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return nil, err
	}
	if ok {
		out := make([]T, 0, len(fields))
		for _, raw := range fields {
			var item T
			if sonic.Unmarshal([]byte(raw), &item) != nil {
				continue
			}
			out = append(out, item)
		}
		return out, nil
	}

	raw, ok, err := kv.Get(ctx, key)
	if err != nil && !errors.Is(err, store.ErrWrongType) {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var out []T
	if sonic.Unmarshal([]byte(raw), &out) != nil {
		return nil, nil
	}
	return out, nil
}

// decodeHashDocument coerces a flat field map into out. Hash values may be
// plain strings or JSON fragments depending on which writer produced them,
// so each value is tried as JSON first and kept as a string otherwise.
func decodeHashDocument(fields map[string]string, out any) bool {
	doc := make(map[string]any, len(fields))
	for field, raw := range fields {
		var parsed any
		if err := sonic.Unmarshal([]byte(raw), &parsed); err == nil {
			doc[field] = parsed
			continue
		}
		doc[field] = raw
	}

	encoded, err := sonic.Marshal(doc)
	if err != nil {
		return false
	}
	return sonic.Unmarshal(encoded, out) == nil
}

// parseLegacyIDString interprets a string-shaped id collection: a JSON
// array, a comma-separated list, or a single bare id.
func parseLegacyIDString(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var ids []string
		if sonic.Unmarshal([]byte(trimmed), &ids) == nil {
			return ids
		}
		// Arrays written by the loosest legacy writers held mixed scalars.
		var mixed []any
		if sonic.Unmarshal([]byte(trimmed), &mixed) == nil {
			out := make([]string, 0, len(mixed))
			for _, v := range mixed {
				if s, ok := v.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}

	if strings.Contains(trimmed, ",") {
		return strings.Split(trimmed, ",")
	}
	return []string{trimmed}
}

// cleanIDs trims, drops empties and falsy placeholders, and deduplicates
// while preserving first-seen order.
func cleanIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || id == "null" || id == "undefined" || id == "false" || id == "0" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
