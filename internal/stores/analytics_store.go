package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/filestorages"
	"telemetry-ingest/internal/shared/ulid"
)

// AnalyticsStore is the batch writer's durable sink for ordinary events. Each
// flush becomes one append-only NDJSON segment, written atomically; segments
// are named by a fresh ULID so concurrent flushes never collide. The analytics
// store dedups on event_id downstream, so re-written segments after a client
// retry are harmless.
type AnalyticsStore struct {
	fileStorage filestorages.FileStorage
	dir         string

	now func() time.Time
}

func NewAnalyticsStore(fileStorage filestorages.FileStorage) *AnalyticsStore {
	return &AnalyticsStore{
		fileStorage: fileStorage,
		dir:         "events",
		now:         time.Now,
	}
}

// WriteBatch performs one bulk insert of the given events.
func (s *AnalyticsStore) WriteBatch(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event %s: %w", event.EventID, err)
		}
	}

	key := fmt.Sprintf("%s/%s/%s.ndjson", s.dir, s.now().UTC().Format("2006-01-02"), ulid.NewULID())
	_, err := s.fileStorage.Put(ctx, key, &buf, filestorages.PutOptions{AllowOverwrite: false})
	if err != nil {
		return fmt.Errorf("failed to write event segment: %w", err)
	}
	return nil
}
