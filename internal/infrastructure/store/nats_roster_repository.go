// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/gatherhall/event-service/internal/domain"
	"github.com/gatherhall/event-service/internal/domain/models"
)

// NatsFriendRosterRepository reads the accepted-friend rosters maintained by
// the friend subsystem out of its KV bucket. Writes happen elsewhere; this
// service only consumes the roster.
type NatsFriendRosterRepository struct {
	*NatsBaseRepository[models.FriendList]
	keyBuilder *KeyBuilder
}

// NewNatsFriendRosterRepository creates a new reader for the friends bucket.
func NewNatsFriendRosterRepository(kvStore INatsKeyValue) *NatsFriendRosterRepository {
	return &NatsFriendRosterRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.FriendList](kvStore, "friend list"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// AcceptedFriends returns the usernames whose friendship with the user is in
// the accepted state. A user without a roster entry simply has no friends.
func (r *NatsFriendRosterRepository) AcceptedFriends(ctx context.Context, username string) ([]string, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixFriendList, username)
	list, err := r.NatsBaseRepository.Get(ctx, key)
	if err != nil {
		if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
			return nil, nil
		}
		return nil, err
	}

	return list.Accepted, nil
}

// NatsOrganizationRosterRepository reads organization rosters maintained by
// the organization subsystem out of its KV bucket.
type NatsOrganizationRosterRepository struct {
	*NatsBaseRepository[models.Organization]
	keyBuilder *KeyBuilder
}

// NewNatsOrganizationRosterRepository creates a new reader for the
// organization-members bucket.
func NewNatsOrganizationRosterRepository(kvStore INatsKeyValue) *NatsOrganizationRosterRepository {
	return &NatsOrganizationRosterRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Organization](kvStore, "organization"),
		keyBuilder:         NewKeyBuilder(""),
	}
}

// Members returns the usernames belonging to the organization, including its
// owner. A missing organization yields a NotFound error.
func (r *NatsOrganizationRosterRepository) Members(ctx context.Context, organization string) ([]string, error) {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixOrganization, organization)
	org, err := r.NatsBaseRepository.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return org.Roster(), nil
}
