// Copyright The Gatherhall Authors.
// SPDX-License-Identifier: MIT

package models

// FriendList is the stored accepted-friend roster of one user. Friendship
// state transitions happen in the friend subsystem; this service only reads
// the accepted set.
type FriendList struct {
	Username string   `json:"username"`
	Accepted []string `json:"accepted"`
}

// Organization is the stored roster of one organization. Membership is
// managed by the organization subsystem; this service reads it for
// invitation and removal cascades.
type Organization struct {
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Members []string `json:"members"`
}

// Roster returns the organization's full member set including its owner,
// deduplicated.
func (o *Organization) Roster() []string {
	if o == nil {
		return nil
	}

	seen := make(map[string]bool, len(o.Members)+1)
	roster := make([]string, 0, len(o.Members)+1)
	if o.Owner != "" {
		seen[o.Owner] = true
		roster = append(roster, o.Owner)
	}
	for _, member := range o.Members {
		if member == "" || seen[member] {
			continue
		}
		seen[member] = true
		roster = append(roster, member)
	}

	return roster
}
