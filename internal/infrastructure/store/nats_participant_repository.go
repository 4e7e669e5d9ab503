// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// NatsParticipantRepository is the NATS KV store repository for participant
// rows. Rows are keyed by the (event, user) pair, which gives the store-level
// uniqueness guarantee the state machine relies on: re-creating a pair
// overwrites rather than accumulates.
type NatsParticipantRepository struct {
	*NatsBaseRepository[models.Participant]
	keyBuilder *KeyBuilder
}

// NewNatsParticipantRepository creates a new NATS KV store repository for participants.
func NewNatsParticipantRepository(kvStore INatsKeyValue) *NatsParticipantRepository {
	return &NatsParticipantRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Participant](kvStore, "participant"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

func (r *NatsParticipantRepository) key(eventUID, username string) string {
	return r.keyBuilder.CompoundKeyEncoded(KeyPrefixParticipant, eventUID, username)
}

// Create creates a new participant row.
func (r *NatsParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	key := r.key(participant.EventUID, participant.Username)
	return r.NatsBaseRepository.Create(ctx, key, participant)
}

// Get retrieves the row for an (event, user) pair.
func (r *NatsParticipantRepository) Get(ctx context.Context, eventUID, username string) (*models.Participant, error) {
	return r.NatsBaseRepository.Get(ctx, r.key(eventUID, username))
}

// GetWithRevision retrieves the row for an (event, user) pair with its revision.
func (r *NatsParticipantRepository) GetWithRevision(ctx context.Context, eventUID, username string) (*models.Participant, uint64, error) {
	return r.NatsBaseRepository.GetWithRevision(ctx, r.key(eventUID, username))
}

// Update updates an existing participant row.
func (r *NatsParticipantRepository) Update(ctx context.Context, participant *models.Participant, revision uint64) error {
	key := r.key(participant.EventUID, participant.Username)
	return r.NatsBaseRepository.Update(ctx, key, participant, revision)
}

// Delete removes a participant row.
func (r *NatsParticipantRepository) Delete(ctx context.Context, eventUID, username string, revision uint64) error {
	return r.NatsBaseRepository.Delete(ctx, r.key(eventUID, username), revision)
}

// ListByEvent retrieves all participant rows of an event.
func (r *NatsParticipantRepository) ListByEvent(ctx context.Context, eventUID string) ([]*models.Participant, error) {
	pattern := KeyPrefixParticipant + "/" + eventUID + "/"
	return r.ListEntitiesEncoded(ctx, pattern, r.keyBuilder)
}

// ListByUser retrieves all participant rows of a user across events.
func (r *NatsParticipantRepository) ListByUser(ctx context.Context, username string) ([]*models.Participant, error) {
	rows, err := r.ListEntitiesEncoded(ctx, KeyPrefixParticipant+"/", r.keyBuilder)
	if err != nil {
		return nil, err
	}

	var matching []*models.Participant
	for _, row := range rows {
		if row.Username == username {
			matching = append(matching, row)
		}
	}

	return matching, nil
}
