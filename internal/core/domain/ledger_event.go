package domain

import (
	"strings"
	"time"
)

// LedgerEventType is the kind of change published to subscribers.
type LedgerEventType string

const (
	EventEntryCreated LedgerEventType = "created"
	EventEntryUpdated LedgerEventType = "updated"
	EventEntryRemoved LedgerEventType = "removed"
)

// LedgerEvent is pushed to realtime subscribers after a successful write.
// It carries enough of the entry for a subscriber to decide whether to re-fetch.
type LedgerEvent struct {
	Type        LedgerEventType `json:"type"`
	EntryID     string          `json:"entryId"`
	Kind        EntryKind       `json:"kind"`
	PNR         string          `json:"pnr"`
	Source      string          `json:"source"`
	Beneficiary string          `json:"beneficiary"`
	EntryDate   time.Time       `json:"entryDate"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// NewLedgerEvent builds an event for entry.
func NewLedgerEvent(t LedgerEventType, entry LedgerEntry, now time.Time) LedgerEvent {
	return LedgerEvent{
		Type:        t,
		EntryID:     entry.ID,
		Kind:        entry.Kind,
		PNR:         entry.PNR,
		Source:      entry.Source,
		Beneficiary: entry.Beneficiary,
		EntryDate:   entry.EntryDate,
		OccurredAt:  now,
	}
}

// LedgerFilter selects entries for listing and subscriptions. Zero values match everything.
type LedgerFilter struct {
	Kind           EntryKind
	PNR            string
	Source         string
	Beneficiary    string
	From           *time.Time // inclusive, on EntryDate
	To             *time.Time // exclusive, on EntryDate
	Limit          int
	NextToken      *string
	IncludeRemoved bool
}

func (f LedgerFilter) matches(kind EntryKind, pnr, source, beneficiary string, entryDate time.Time) bool {
	if f.Kind != "" && f.Kind != kind {
		return false
	}
	if f.PNR != "" && NormalizePNR(f.PNR) != pnr {
		return false
	}
	if f.Source != "" && !strings.EqualFold(strings.TrimSpace(f.Source), source) {
		return false
	}
	if f.Beneficiary != "" && !strings.EqualFold(strings.TrimSpace(f.Beneficiary), beneficiary) {
		return false
	}
	if f.From != nil && entryDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !entryDate.Before(*f.To) {
		return false
	}
	return true
}

// Matches reports whether entry satisfies the filter.
func (f LedgerFilter) Matches(entry LedgerEntry) bool {
	if !f.IncludeRemoved && entry.Status == StatusRemoved {
		return false
	}
	return f.matches(entry.Kind, entry.PNR, entry.Source, entry.Beneficiary, entry.EntryDate)
}

// MatchesEvent reports whether a subscriber with this filter should receive ev.
// Removal events are always delivered for matching entries.
func (f LedgerFilter) MatchesEvent(ev LedgerEvent) bool {
	return f.matches(ev.Kind, ev.PNR, ev.Source, ev.Beneficiary, ev.EntryDate)
}
