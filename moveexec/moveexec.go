// Package moveexec implements spec.md §4.4's move executor: on a PbtA
// miss the router asks this package for a GM move. Generative moves
// try an LLM call first and fall back to a deterministic template
// table on any failure, the same "best-effort collaborator, safe
// fallback" shape the teacher's effect generators use for optional
// enrichment.
package moveexec

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/xldeveloper/theinterneti-tta-solo/core"
	"github.com/xldeveloper/theinterneti-tta-solo/llm"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// MoveType is the closed GM-move set (spec.md §4.3).
type MoveType string

// The closed GM-move set.
const (
	ShowDanger           MoveType = "SHOW_DANGER"
	OfferOpportunity     MoveType = "OFFER_OPPORTUNITY"
	RevealUnwelcomeTruth MoveType = "REVEAL_UNWELCOME_TRUTH"
	DealDamage           MoveType = "DEAL_DAMAGE"
	UseMonsterMove       MoveType = "USE_MONSTER_MOVE"
	SeparateThem         MoveType = "SEPARATE_THEM"
	TakeAway             MoveType = "TAKE_AWAY"
	Capture              MoveType = "CAPTURE"
	AdvanceTime          MoveType = "ADVANCE_TIME"
	IntroduceNPC         MoveType = "INTRODUCE_NPC"
	ChangeEnvironment    MoveType = "CHANGE_ENVIRONMENT"
)

// Class is how a move type is classified (spec.md §4.4).
type Class string

// The closed classification set.
const (
	ClassGenerative   Class = "generative"
	ClassEffect       Class = "effect"
	ClassNarrativeOnly Class = "narrative-only"
)

var classTable = map[MoveType]Class{
	IntroduceNPC:         ClassGenerative,
	ChangeEnvironment:    ClassGenerative,
	RevealUnwelcomeTruth: ClassGenerative,
	DealDamage:           ClassEffect,
	TakeAway:             ClassEffect,
	Capture:              ClassEffect,
	SeparateThem:         ClassEffect,
	ShowDanger:           ClassNarrativeOnly,
	OfferOpportunity:     ClassNarrativeOnly,
	UseMonsterMove:       ClassNarrativeOnly,
	AdvanceTime:          ClassNarrativeOnly,
}

// ClassOf returns the classification of a move type.
func ClassOf(m MoveType) Class { return classTable[m] }

// SelectMove picks a deterministic GM move from danger level and
// context (spec.md §4.3): soft moves preferred below danger 10, hard
// moves at or above.
func SelectMove(danger int, recentEventCount int) MoveType {
	soft := []MoveType{ShowDanger, OfferOpportunity, AdvanceTime, IntroduceNPC}
	hard := []MoveType{DealDamage, TakeAway, Capture, SeparateThem, RevealUnwelcomeTruth, UseMonsterMove, ChangeEnvironment}
	pool := soft
	if danger >= 10 {
		pool = hard
	}
	return pool[recentEventCount%len(pool)]
}

// EntityStore is the narrow persistence port the executor needs to
// create entities (spec.md §4.9 TruthRepo, trimmed to this package's
// use). The repo package provides concrete implementations.
type EntityStore interface {
	CreateEntity(ctx context.Context, e *worldmodel.Record) error
	DeleteEntity(ctx context.Context, id string) error
}

// RelationshipStore is the narrow persistence port for relationship
// edges (spec.md §4.9 GraphRepo, trimmed).
type RelationshipStore interface {
	CreateRelationship(ctx context.Context, r *worldmodel.Relationship) error
}

// Result is the move executor's return shape (spec.md §4.4).
type Result struct {
	Success               bool
	Narrative             string
	EntitiesCreated       []*worldmodel.Record
	RelationshipsCreated  []*worldmodel.Relationship
	EntitiesModified      []string
	StateChanges          []string
	UsedFallback          bool
}

// locationTemplates are the deterministic fallback tables keyed by
// location type (spec.md §4.4).
var locationTemplates = map[string]map[MoveType]string{
	"tavern":  {IntroduceNPC: "A weary traveler in the corner meets your eyes.", ChangeEnvironment: "The fire crackles louder as the door swings open.", RevealUnwelcomeTruth: "The barkeep's smile doesn't reach their eyes."},
	"dungeon": {IntroduceNPC: "Something shifts in the darkness ahead.", ChangeEnvironment: "The passage behind you collapses with a groan of stone.", RevealUnwelcomeTruth: "The air grows thin and smells of old blood."},
	"market":  {IntroduceNPC: "A hooded figure watches you from a nearby stall.", ChangeEnvironment: "The crowd surges, scattering in sudden alarm.", RevealUnwelcomeTruth: "A merchant's ledger names you as already owing a debt."},
	"forest":  {IntroduceNPC: "A pair of eyes tracks you from the underbrush.", ChangeEnvironment: "The canopy closes overhead, swallowing the light.", RevealUnwelcomeTruth: "The trail markers have been deliberately altered."},
	"default": {IntroduceNPC: "Someone new steps into view.", ChangeEnvironment: "The surroundings shift in some small, unsettling way.", RevealUnwelcomeTruth: "A detail you'd overlooked now seems significant."},
}

func templateFor(locationType string, move MoveType) string {
	table, ok := locationTemplates[locationType]
	if !ok {
		table = locationTemplates["default"]
	}
	text, ok := table[move]
	if !ok {
		text = locationTemplates["default"][move]
	}
	return text
}

// generatedEntity is the schema a generative LLM call must conform to.
type generatedEntity struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

const generatedEntitySchema = `{"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"},"tags":{"type":"array","items":{"type":"string"}}},"required":["name","description"]}`

// Executor runs GM moves (spec.md §4.4).
type Executor struct {
	LLM          llm.Port // nil permitted: every generative move then falls back
	Entities     EntityStore
	Relationships RelationshipStore
	Timeout      time.Duration
}

// NewExecutor builds an Executor with spec.md §4.4's 5s generative timeout.
func NewExecutor(port llm.Port, entities EntityStore, relationships RelationshipStore) *Executor {
	return &Executor{LLM: port, Entities: entities, Relationships: relationships, Timeout: 5 * time.Second}
}

// Execute runs one GM move against a universe/location context
// (spec.md §4.4).
func (x *Executor) Execute(ctx context.Context, move MoveType, universeID, locationID, locationType string) (*Result, error) {
	switch ClassOf(move) {
	case ClassGenerative:
		return x.executeGenerative(ctx, move, universeID, locationID, locationType)
	case ClassEffect:
		return &Result{Success: true, Narrative: templateFor(locationType, move), StateChanges: []string{string(move)}}, nil
	default:
		return &Result{Success: true, Narrative: templateFor(locationType, move)}, nil
	}
}

func (x *Executor) executeGenerative(ctx context.Context, move MoveType, universeID, locationID, locationType string) (*Result, error) {
	gen, usedFallback := x.tryGenerate(ctx, move, locationType)

	entityType := core.EntityObject
	if move == IntroduceNPC {
		entityType = core.EntityCharacter
	}
	entity := &worldmodel.Record{
		ID:          newEntityID(move, locationID),
		UniverseID:  universeID,
		Type:        entityType,
		Name:        gen.Name,
		Description: gen.Description,
		Tags:        gen.Tags,
	}
	if entityType == core.EntityCharacter {
		entity.Character = worldmodel.NewCharacterStats()
	}

	if err := x.Entities.CreateEntity(ctx, entity); err != nil {
		return nil, rpgerr.Wrap(err, "moveexec: persist generated entity")
	}

	rel := &worldmodel.Relationship{
		ID:         entity.ID + "-located",
		UniverseID: universeID,
		From:       entity.ID,
		To:         locationID,
		Type:       worldmodel.RelLocatedIn,
	}
	if err := x.Relationships.CreateRelationship(ctx, rel); err != nil {
		// Compensating delete: the entity must not outlive its edge (spec.md §4.4).
		_ = x.Entities.DeleteEntity(ctx, entity.ID)
		return nil, rpgerr.Wrap(err, "moveexec: persist relationship, entity rolled back")
	}

	return &Result{
		Success:              true,
		Narrative:            gen.Description,
		EntitiesCreated:      []*worldmodel.Record{entity},
		RelationshipsCreated: []*worldmodel.Relationship{rel},
		UsedFallback:         usedFallback,
	}, nil
}

func (x *Executor) tryGenerate(ctx context.Context, move MoveType, locationType string) (generatedEntity, bool) {
	if x.LLM == nil {
		return fallbackEntity(move, locationType), true
	}
	callCtx, cancel := context.WithTimeout(ctx, x.Timeout)
	defer cancel()

	resp, err := x.LLM.GenerateStructured(callCtx, llm.StructuredRequest{
		SystemPrompt: "You generate a single RPG entity as compact JSON.",
		Prompt:       string(move) + " in a " + locationType,
		SchemaName:   "generated_entity",
		SchemaJSON:   generatedEntitySchema,
	})
	if err != nil || resp == nil || resp.JSON == "" {
		return fallbackEntity(move, locationType), true
	}
	var parsed generatedEntity
	if jsonErr := json.Unmarshal([]byte(resp.JSON), &parsed); jsonErr != nil || parsed.Name == "" {
		return fallbackEntity(move, locationType), true
	}
	return parsed, false
}

func fallbackEntity(move MoveType, locationType string) generatedEntity {
	text := templateFor(locationType, move)
	return generatedEntity{Name: "Unnamed", Description: text}
}

// newEntityID mints a unique, human-readable id for a generated
// entity. Uses google/uuid rather than a package-level counter: this
// executor can run concurrently across sessions (session.Manager.
// DispatchMany fans out per-session goroutines), and a shared counter
// would race across them.
func newEntityID(move MoveType, locationID string) string {
	return fmt.Sprintf("%s-%s-%s", locationID, move, uuid.NewString())
}
