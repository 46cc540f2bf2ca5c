package infrastructure

import (
	"fmt"

	"coinflip/domain/events"
)

// StreamName is the JetStream stream holding every settlement event
const StreamName = "coinflip_events"

const (
	SubjectWagerCreated    = "coinflip.wager.created"
	SubjectWagerSettled    = "coinflip.wager.settled"
	SubjectBalanceChanged  = "coinflip.balance.changed"
	SubjectTreasuryUpdated = "coinflip.treasury.updated"
	SubjectEpochAdvanced   = "coinflip.epoch.advanced"
)

// EventSubjectMapper handles mapping between domain events and bus subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeWagerCreated:
		return SubjectWagerCreated
	case events.EventTypeWagerSettled:
		return SubjectWagerSettled
	case events.EventTypeBalanceChange:
		return SubjectBalanceChanged
	case events.EventTypeTreasuryUpdated:
		return SubjectTreasuryUpdated
	case events.EventTypeEpochAdvanced:
		return SubjectEpochAdvanced
	default:
		return fmt.Sprintf("coinflip.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectWagerCreated:
		return events.EventTypeWagerCreated
	case SubjectWagerSettled:
		return events.EventTypeWagerSettled
	case SubjectBalanceChanged:
		return events.EventTypeBalanceChange
	case SubjectTreasuryUpdated:
		return events.EventTypeTreasuryUpdated
	case SubjectEpochAdvanced:
		return events.EventTypeEpochAdvanced
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectWagerCreated,
		SubjectWagerSettled,
		SubjectBalanceChanged,
		SubjectTreasuryUpdated,
		SubjectEpochAdvanced,
	}
}
