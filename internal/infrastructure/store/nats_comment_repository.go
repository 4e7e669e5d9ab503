// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/gatherhall/event-service/internal/domain/models"
)

// NatsCommentRepository is the NATS KV store repository for event comments.
type NatsCommentRepository struct {
	*NatsBaseRepository[models.Comment]
	keyBuilder *KeyBuilder
}

// NewNatsCommentRepository creates a new NATS KV store repository for comments.
func NewNatsCommentRepository(kvStore INatsKeyValue) *NatsCommentRepository {
	return &NatsCommentRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Comment](kvStore, "comment"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Create creates a new comment, minting a UID when none is set.
func (r *NatsCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.UID == "" {
		comment.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixComment, comment.UID)
	return r.NatsBaseRepository.Create(ctx, key, comment)
}

// Get retrieves a comment by UID.
func (r *NatsCommentRepository) Get(ctx context.Context, commentUID string) (*models.Comment, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixComment, commentUID)
	return r.NatsBaseRepository.Get(ctx, key)
}

// Delete removes a comment.
func (r *NatsCommentRepository) Delete(ctx context.Context, commentUID string) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixComment, commentUID)
	return r.NatsBaseRepository.DeleteWithoutRevision(ctx, key)
}

// ListByEvent retrieves all comments of an event.
func (r *NatsCommentRepository) ListByEvent(ctx context.Context, eventUID string) ([]*models.Comment, error) {
	comments, err := r.ListEntitiesEncoded(ctx, KeyPrefixComment+"/", r.keyBuilder)
	if err != nil {
		return nil, err
	}

	var matching []*models.Comment
	for _, comment := range comments {
		if comment.EventUID == eventUID {
			matching = append(matching, comment)
		}
	}

	return matching, nil
}
