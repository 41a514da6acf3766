package repo

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// reindex rebuilds the manifest from the store's current contents and
// publishes it under ManifestKey. Publishing happens last: any listing,
// read, or serialization failure leaves the previously published
// manifest in place. Concurrent reindexes are not serialized; the last
// publish wins, and each publish is a single atomic object overwrite.
func (s *Server) reindex(ctx context.Context) error {

	objects, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list object store: %w", err)
	}

	var mods []ModEntry
	for _, obj := range objects {
		if obj.Key == ManifestKey {
			continue
		}

		sum, err := s.hashObject(ctx, obj.Key)
		if err != nil {
			return err
		}

		mods = append(mods, ModEntry{
			Ident:  modIdent(obj.Key),
			File:   s.store.Location(obj.Key),
			Bytes:  uint64(obj.Size),
			Xxhsum: sum,
		})
	}

	slices.SortFunc(mods, func(a, b ModEntry) int {
		return strings.Compare(a.Ident, b.Ident)
	})

	repository := Repository{
		UUID:  RepositoryUUID(s.cfg.PublicURL),
		Title: s.cfg.Title,
		References: References{
			Count: len(mods),
			Mods:  mods,
		},
	}

	doc, err := xml.Marshal(repository)
	if err != nil {
		return fmt.Errorf("failed to serialize manifest: %w", err)
	}

	payload := append([]byte(xml.Header), doc...)

	if err := s.store.Put(ctx, ManifestKey, bytes.NewReader(payload), int64(len(payload)), "text/xml"); err != nil {
		return fmt.Errorf("failed to publish manifest: %w", err)
	}

	slog.Info("Published manifest", "key", ManifestKey, "mods", len(mods))
	return nil
}

// hashObject streams the object's full content through the digest and
// returns the lowercase hexadecimal 64-bit sum.
func (s *Server) hashObject(ctx context.Context, key string) (string, error) {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer rc.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, rc); err != nil {
		return "", fmt.Errorf("failed to read object %q: %w", key, err)
	}

	return fmt.Sprintf("%x", digest.Sum64()), nil
}
