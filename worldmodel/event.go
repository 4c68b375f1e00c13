package worldmodel

import "time"

// EventType is the closed set of event labels (spec.md §3). The set is
// additive-only across versions (spec.md §6).
type EventType string

// The closed event-type set.
const (
	EventCombatRound     EventType = "COMBAT_ROUND"
	EventDialogue        EventType = "DIALOGUE"
	EventTravel          EventType = "TRAVEL"
	EventItemTransfer    EventType = "ITEM_TRANSFER"
	EventFork            EventType = "FORK"
	EventConditionApplied EventType = "CONDITION_APPLIED"
	EventResourceUsed    EventType = "RESOURCE_USED"
	EventQuestUpdated    EventType = "QUEST_UPDATED"
	EventDeath           EventType = "DEATH"
	EventItemLost        EventType = "ITEM_LOST"
	EventBreakingPoint   EventType = "BREAKING_POINT"
	EventConcentrationBroken EventType = "CONCENTRATION_BROKEN"
	EventWorldTravel     EventType = "WORLD_TRAVEL"
)

// Outcome is the closed set of resolution outcomes (spec.md §3, §4.3).
type Outcome string

// The closed outcome set.
const (
	OutcomeHit       Outcome = "HIT"
	OutcomeMiss      Outcome = "MISS"
	OutcomeStrongHit Outcome = "STRONG_HIT"
	OutcomeWeakHit   Outcome = "WEAK_HIT"
	OutcomeSuccess   Outcome = "SUCCESS"
	OutcomeFail      Outcome = "FAIL"
	OutcomeNeutral   Outcome = "NEUTRAL"
)

// Event is the immutable, append-only record described in spec.md §3.
// It is the sole mechanism by which state changes are recorded
// (spec.md §3 Lifecycle): the router appends an Event before the repo
// applies the corresponding state change.
type Event struct {
	ID              string
	UniverseID      string
	InGameTimestamp int64 // monotonic in-game ticks, per universe
	WallTimestamp   time.Time
	ActorID         string
	TargetID        *string
	LocationID      *string
	Type            EventType
	Outcome         Outcome
	Roll            *int
	CausedByEventID *string
	Payload         map[string]any
}
