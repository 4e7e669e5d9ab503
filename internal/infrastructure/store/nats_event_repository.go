// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// NatsEventRepository is the NATS KV store repository for events. Group and
// creator listings are key scans over the bucket; the catalog is small
// enough that no secondary index is kept.
type NatsEventRepository struct {
	*NatsBaseRepository[models.Event]
	keyBuilder *KeyBuilder
}

// NewNatsEventRepository creates a new NATS KV store repository for events.
func NewNatsEventRepository(kvStore INatsKeyValue) *NatsEventRepository {
	return &NatsEventRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Event](kvStore, "event"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create creates a new event, minting a UID when none is set.
func (r *NatsEventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.UID == "" {
		event.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, event.UID)
	return r.NatsBaseRepository.Create(ctx, key, event)
}

// Exists checks if an event exists.
func (r *NatsEventRepository) Exists(ctx context.Context, eventUID string) (bool, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, eventUID)
	return r.NatsBaseRepository.Exists(ctx, key)
}

// Get retrieves an event by UID.
func (r *NatsEventRepository) Get(ctx context.Context, eventUID string) (*models.Event, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, eventUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// GetWithRevision retrieves an event with its revision by UID.
func (r *NatsEventRepository) GetWithRevision(ctx context.Context, eventUID string) (*models.Event, uint64, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, eventUID)
	return r.NatsBaseRepository.GetWithRevision(ctx, key)
}

// Update updates an existing event.
func (r *NatsEventRepository) Update(ctx context.Context, event *models.Event, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, event.UID)
	return r.NatsBaseRepository.Update(ctx, key, event, revision)
}

// Delete removes an event.
func (r *NatsEventRepository) Delete(ctx context.Context, eventUID string, revision uint64) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixEvent, eventUID)
	return r.NatsBaseRepository.Delete(ctx, key, revision)
}

// ListByGroup returns every event sharing a recurrence group.
func (r *NatsEventRepository) ListByGroup(ctx context.Context, recurrenceGroupID string) ([]*models.Event, error) {
	allEvents, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Event
	for _, event := range allEvents {
		if event.RecurrenceGroupID == recurrenceGroupID {
			matching = append(matching, event)
		}
	}

	return matching, nil
}

// ListByCreator returns every event created by a user.
func (r *NatsEventRepository) ListByCreator(ctx context.Context, username string) ([]*models.Event, error) {
	allEvents, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var matching []*models.Event
	for _, event := range allEvents {
		if event.Creator == username {
			matching = append(matching, event)
		}
	}

	return matching, nil
}

// ListAll lists all events.
func (r *NatsEventRepository) ListAll(ctx context.Context) ([]*models.Event, error) {
	pattern := KeyPrefixEvent + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}
