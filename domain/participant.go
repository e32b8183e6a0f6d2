// Package domain contains core concepts of the chat room.
// This file defines Participant entities and the staleness rule used by the reaper.
// No storage, network, or HTTP logic should be added here.
package domain

import (
	"sort"
	"time"
)

// Participant is a registered user of the room.
// Name is unique across active participants, case-sensitive.
type Participant struct {
	Name       string    `json:"name"`
	LastStatus time.Time `json:"lastStatus"`
}

// IsStale reports whether the participant has been silent for strictly more than threshold.
func (p Participant) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastStatus) > threshold
}

// StaleParticipants returns the names of stale participants, sorted so that
// departure notices are always emitted in the same order.
func StaleParticipants(participants []Participant, now time.Time, threshold time.Duration) []string {
	var names []string
	for _, p := range participants {
		if p.IsStale(now, threshold) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}
