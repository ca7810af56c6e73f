package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"telemetry-ingest/internal/models"
	"telemetry-ingest/internal/shared/filestorages"
)

// ToolRegistryEntry is the latest known metadata for one named tool, fed by
// tool_discovery events.
type ToolRegistryEntry struct {
	ToolName    string         `json:"tool_name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
	TenantID    string         `json:"tenant_id"`
	ProjectID   string         `json:"project_id"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ToolRegistryStore is the upsert-style sink for tool_discovery events:
// latest wins per (tenant, tool name). Each flush persists a snapshot of the
// full registry, overwriting the previous one.
type ToolRegistryStore struct {
	fileStorage filestorages.FileStorage
	key         string

	mu      sync.Mutex
	entries map[string]ToolRegistryEntry
}

func NewToolRegistryStore(ctx context.Context, fileStorage filestorages.FileStorage) (*ToolRegistryStore, error) {
	store := &ToolRegistryStore{
		fileStorage: fileStorage,
		key:         "tool-registry/registry.json",
		entries:     make(map[string]ToolRegistryEntry),
	}
	if err := store.loadSnapshot(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// loadSnapshot restores the registry persisted by a previous run, so the
// first flush after a restart does not shrink the snapshot to the new
// batch's tools.
func (s *ToolRegistryStore) loadSnapshot(ctx context.Context) error {
	reader, err := s.fileStorage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read tool registry snapshot: %w", err)
	}
	defer reader.Close()

	if err := json.NewDecoder(reader).Decode(&s.entries); err != nil {
		return fmt.Errorf("failed to decode tool registry snapshot: %w", err)
	}
	return nil
}

// WriteBatch upserts the given discovery events and persists the snapshot.
// Within one batch, later events for the same tool overwrite earlier ones.
func (s *ToolRegistryStore) WriteBatch(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		entryKey := event.TenantID + "/" + event.ToolName
		s.entries[entryKey] = ToolRegistryEntry{
			ToolName:    event.ToolName,
			Description: event.ToolDescription,
			InputSchema: event.ToolInputSchema,
			TenantID:    event.TenantID,
			ProjectID:   event.ProjectID,
			UpdatedAt:   event.IngestedAt,
		}
	}

	snapshot, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal tool registry: %w", err)
	}

	_, err = s.fileStorage.Put(ctx, s.key, bytes.NewReader(snapshot), filestorages.PutOptions{AllowOverwrite: true})
	if err != nil {
		return fmt.Errorf("failed to persist tool registry: %w", err)
	}
	return nil
}

// Lookup returns the latest entry for one tenant's tool.
func (s *ToolRegistryStore) Lookup(tenantID, toolName string) (ToolRegistryEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[tenantID+"/"+toolName]
	return entry, ok
}
