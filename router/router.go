// Package router implements spec.md §4.10: the single-threaded turn
// orchestrator that dispatches a structured Intent through context
// loading, skill resolution, effect application, event recording, and
// response composition.
package router

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xldeveloper/theinterneti-tta-solo/ability"
	"github.com/xldeveloper/theinterneti-tta-solo/dice"
	"github.com/xldeveloper/theinterneti-tta-solo/effects"
	"github.com/xldeveloper/theinterneti-tta-solo/moveexec"
	"github.com/xldeveloper/theinterneti-tta-solo/multiverse"
	"github.com/xldeveloper/theinterneti-tta-solo/npc"
	"github.com/xldeveloper/theinterneti-tta-solo/repo"
	"github.com/xldeveloper/theinterneti-tta-solo/resources"
	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
	"github.com/xldeveloper/theinterneti-tta-solo/skills"
	"github.com/xldeveloper/theinterneti-tta-solo/worldmodel"
)

// Intent is the closed set of structured player intents (spec.md §4.10).
type Intent string

// The closed intent set. IntentNPCTurn supplements spec.md's player-facing
// set so non-player actors have a dispatch entry of their own (SPEC_FULL.md
// §4.8: NPC decision needs a production caller, not just a standalone model).
const (
	IntentAttack      Intent = "attack"
	IntentCastSpell   Intent = "cast_spell"
	IntentUseAbility  Intent = "use_ability"
	IntentTalk        Intent = "talk"
	IntentPersuade    Intent = "persuade"
	IntentIntimidate  Intent = "intimidate"
	IntentDeceive     Intent = "deceive"
	IntentMove        Intent = "move"
	IntentLook        Intent = "look"
	IntentSearch      Intent = "search"
	IntentInteract    Intent = "interact"
	IntentUseItem     Intent = "use_item"
	IntentPickUp      Intent = "pick_up"
	IntentDrop        Intent = "drop"
	IntentGive        Intent = "give"
	IntentRest        Intent = "rest"
	IntentWait        Intent = "wait"
	IntentAskQuestion Intent = "ask_question"
	IntentFork        Intent = "fork"
	IntentNPCTurn     Intent = "npc_turn"
	IntentUnclear     Intent = "unclear"
)

// TurnInput is the structured command the router dispatches (spec.md §4.10).
type TurnInput struct {
	Intent      Intent
	ActorID     string
	TargetID    string
	UniverseID  string
	LocationID  string
	Skill       skills.Skill
	AbilityID   string
	DC          int
	RestTrigger string

	// Exit names the direction taken for IntentMove, looked up against
	// the current location's LocationStats.Exits (spec.md §9 open
	// question: a move intent naming a valid exit is a strict location
	// change, not narration).
	Exit string

	// ForkChildID/ForkBranch/ForkReason parameterize IntentFork.
	// ForkChildID is generated if left blank.
	ForkChildID string
	ForkBranch  string
	ForkReason  string

	// Personality/Motivations/NPCContext drive IntentNPCTurn: the actor
	// is assumed to be a non-player character whose action is chosen by
	// npc.Decide rather than supplied by the caller.
	Personality npc.Personality
	Motivations []npc.Motivation
	NPCContext  npc.Context
}

// SkillResult is the per-resolution outcome shape (spec.md §4.10, §7).
type SkillResult struct {
	Success      bool
	Reason       string
	Roll         int
	Total        int
	DC           int
	Outcome      worldmodel.Outcome
	StateChanges []string

	// LocationID is set by resolveMove to the destination entity id, so
	// record() can attach it to the TRAVEL event.
	LocationID string

	// MoveType/MoveNarrative are set when a PbtA miss triggered the GM
	// move executor (spec.md §4.3/§4.4).
	MoveType      string
	MoveNarrative string

	// ResolvedIntent is set by resolveNPCTurn to the concrete intent the
	// NPC's chosen action delegated to, so record() logs the actual
	// mechanical effect rather than the generic "npc_turn" wrapper.
	ResolvedIntent Intent
}

// TurnResult is the router's full response to one TurnInput.
type TurnResult struct {
	Events []*worldmodel.Event
	Skill  *SkillResult
}

// Router orchestrates one session's turns (spec.md §5: single-threaded
// per session by invariant — callers must not invoke Dispatch
// concurrently for the same session).
type Router struct {
	Truth      repo.TruthRepo
	Graph      repo.GraphRepo
	Abilities  repo.AbilityRepo
	Quests     repo.QuestRepo // nil permitted: quest progress tracking is skipped
	Roller     dice.Roller
	Effects    *effects.Pipeline
	Moves      *moveexec.Executor
	Multiverse *multiverse.Service
	Clock      func() int64 // in-game tick source; injected for determinism
}

// New builds a Router over its collaborator ports.
func New(truth repo.TruthRepo, graph repo.GraphRepo, roller dice.Roller, pipeline *effects.Pipeline, moves *moveexec.Executor, mv *multiverse.Service, abilities repo.AbilityRepo, quests repo.QuestRepo) *Router {
	return &Router{Truth: truth, Graph: graph, Abilities: abilities, Quests: quests, Roller: roller, Effects: pipeline, Moves: moves, Multiverse: mv, Clock: defaultClock}
}

var tickCounter int64

func defaultClock() int64 {
	tickCounter++
	return tickCounter
}

// Dispatch runs one turn through parse -> context -> resolve -> apply
// -> record -> respond (spec.md §4.10). Parsing is out of scope here:
// callers hand in an already-structured TurnInput.
func (r *Router) Dispatch(ctx context.Context, in TurnInput) (*TurnResult, error) {
	actor, err := r.Truth.LoadEntity(ctx, in.UniverseID, in.ActorID)
	if err != nil {
		return &TurnResult{Skill: &SkillResult{Success: false, Reason: "actor not found"}}, nil
	}

	result, err := r.resolve(ctx, in, actor)
	if err != nil {
		if rpgerr.IsRepo(err) {
			return nil, err // fatal to the turn; no partial state recorded
		}
		return &TurnResult{Skill: &SkillResult{Success: false, Reason: err.Error()}}, nil
	}

	events, err := r.record(ctx, in, result)
	if err != nil {
		return nil, rpgerr.Wrap(err, "router: record events")
	}
	return &TurnResult{Events: events, Skill: result}, nil
}

// resolve is the fixed dispatch table from spec.md §4.10.
func (r *Router) resolve(ctx context.Context, in TurnInput, actor *worldmodel.Record) (*SkillResult, error) {
	switch in.Intent {
	case IntentAttack:
		return r.resolveAttack(ctx, in, actor)
	case IntentPersuade, IntentIntimidate, IntentDeceive:
		return r.resolveSkillCheck(ctx, in, actor, chaSkillFor(in.Intent))
	case IntentSearch:
		return r.resolveSkillCheck(ctx, in, actor, skills.Perception)
	case IntentRest:
		return r.resolveRest(actor, in.RestTrigger)
	case IntentUseAbility, IntentCastSpell:
		return r.resolveAbility(ctx, in, actor)
	case IntentFork:
		return r.resolveFork(ctx, in)
	case IntentMove:
		return r.resolveMove(ctx, in, actor)
	case IntentNPCTurn:
		return r.resolveNPCTurn(ctx, in, actor)
	case IntentLook, IntentInteract, IntentUseItem, IntentPickUp, IntentDrop, IntentGive, IntentWait, IntentAskQuestion, IntentTalk:
		return &SkillResult{Success: true, Reason: "narrative-only intent, no mechanical resolution"}, nil
	case IntentUnclear:
		return &SkillResult{Success: false, Reason: "unclear"}, nil
	default:
		return &SkillResult{Success: false, Reason: "unclear"}, nil
	}
}

func chaSkillFor(i Intent) skills.Skill {
	switch i {
	case IntentPersuade:
		return skills.Persuasion
	case IntentIntimidate:
		return skills.Intimidation
	default:
		return skills.Deception
	}
}

func (r *Router) resolveAttack(ctx context.Context, in TurnInput, actor *worldmodel.Record) (*SkillResult, error) {
	if actor.Character == nil {
		return nil, rpgerr.InvalidTarget("attacker has no character stats")
	}
	target, err := r.Truth.LoadEntity(ctx, in.UniverseID, in.TargetID)
	if err != nil || target.Character == nil {
		return nil, rpgerr.InvalidTarget("attack target invalid")
	}
	critThreshold := 0
	if r.Effects != nil && r.Effects.Overlay != nil {
		critThreshold = r.Effects.Overlay.CriticalThreshold
	}
	result, err := skills.Attack(ctx, r.Roller, skills.AttackInput{
		Attacker: actor.Character, Target: target.Character,
		AttackerID: actor.ID, TargetID: target.ID,
		Weapon:        skills.Weapon{DamageNotation: "1d8"},
		Tracker:       r.Effects.Tracker,
		CritThreshold: critThreshold,
	})
	if err != nil {
		return nil, err
	}
	sr := &SkillResult{
		Success: result.Hit, Roll: result.AttackRoll, Total: result.TotalAttack,
		Outcome: skillOutcomeToWorldmodel(result.PbtaOutcome),
	}
	if result.Hit {
		damage := result.Damage
		if r.Effects != nil && r.Effects.Overlay != nil {
			damage = r.Effects.Overlay.ScaleDamage(damage)
		}
		target.Character.HP -= damage
		if target.Character.HP < 0 {
			target.Character.HP = 0
		}
		if target.Character.Resources.Solo.ConcentratingOn != "" {
			if broken, _, _, cerr := r.Effects.CheckConcentration(ctx, target, damage); cerr == nil && broken {
				sr.StateChanges = append(sr.StateChanges, "concentration_broken:"+target.ID)
			}
		}
		if target.Character.HP == 0 {
			if changes, qerr := r.advanceQuestsOn(ctx, in.UniverseID, target.ID, ""); qerr == nil {
				sr.StateChanges = append(sr.StateChanges, changes...)
			}
		}
	}
	if !result.Hit {
		sr.Reason = "miss"
		if err := r.applyMissMove(ctx, in, sr); err != nil {
			return nil, err
		}
	}
	return sr, nil
}

func skillOutcomeToWorldmodel(o skills.Outcome) worldmodel.Outcome {
	switch o {
	case skills.StrongHit:
		return worldmodel.OutcomeStrongHit
	case skills.Success:
		return worldmodel.OutcomeSuccess
	case skills.WeakHit:
		return worldmodel.OutcomeWeakHit
	default:
		return worldmodel.OutcomeMiss
	}
}

func (r *Router) resolveSkillCheck(ctx context.Context, in TurnInput, actor *worldmodel.Record, skill skills.Skill) (*SkillResult, error) {
	if actor.Character == nil {
		return nil, rpgerr.InvalidTarget("actor has no character stats")
	}
	check, err := skills.SkillCheck(ctx, r.Roller, actor.Character, skill, in.DC)
	if err != nil {
		return nil, err
	}
	outcome := skills.ClassifyCheck(check.Total, check.DC)
	sr := &SkillResult{
		Success: check.Success, Roll: check.Roll, Total: check.Total, DC: check.DC,
		Outcome: skillOutcomeToWorldmodel(outcome),
	}
	if outcome == skills.Miss {
		if err := r.applyMissMove(ctx, in, sr); err != nil {
			return nil, err
		}
	}
	return sr, nil
}

// applyMissMove is spec.md §4.3's "on MISS the router invokes the move
// executor" rule, shared by attack and skill-check resolution. It picks
// a GM move deterministically from the current location's danger level
// and recent event count (spec.md §4.3), runs it, and folds its
// narrative/state changes into sr.
func (r *Router) applyMissMove(ctx context.Context, in TurnInput, sr *SkillResult) error {
	if r.Moves == nil {
		return nil
	}
	danger := 0
	locationType := "default"
	if in.LocationID != "" {
		if loc, err := r.Truth.LoadEntity(ctx, in.UniverseID, in.LocationID); err == nil && loc.Location != nil {
			danger = loc.Location.Danger
			if len(loc.Tags) > 0 {
				locationType = loc.Tags[0]
			}
		}
	}
	events, err := r.Truth.ListEvents(ctx, in.UniverseID, "")
	if err != nil {
		return err
	}
	move := moveexec.SelectMove(danger, len(events))
	result, err := r.Moves.Execute(ctx, move, in.UniverseID, in.LocationID, locationType)
	if err != nil {
		return rpgerr.Wrap(err, "router: execute GM move")
	}
	sr.MoveType = string(move)
	sr.MoveNarrative = result.Narrative
	sr.StateChanges = append(sr.StateChanges, result.StateChanges...)
	return nil
}

func (r *Router) resolveRest(actor *worldmodel.Record, trigger string) (*SkillResult, error) {
	if actor.Character == nil {
		return nil, rpgerr.InvalidTarget("actor has no character stats")
	}
	rt := resources.ShortRest
	if trigger == "long_rest" {
		rt = resources.LongRest
	}
	actor.Character.Resources.Rest(rt)
	return &SkillResult{Success: true, StateChanges: []string{"rest:" + trigger}}, nil
}

// resolveAbility implements spec.md §4.10's "use_ability -> ability
// lookup + effect pipeline" dispatch entry: load the Universal Ability
// Object, roll any saves its effect blocks require, and run the result
// through effects.Pipeline.ApplyAbilityEffects.
func (r *Router) resolveAbility(ctx context.Context, in TurnInput, actor *worldmodel.Record) (*SkillResult, error) {
	if actor.Character == nil {
		return nil, rpgerr.InvalidTarget("caster has no character stats")
	}
	if r.Abilities == nil {
		return nil, rpgerr.BadInput("router: no ability repo configured")
	}
	a, err := r.Abilities.LoadAbility(ctx, in.AbilityID)
	if err != nil {
		return nil, err
	}

	var targets []*worldmodel.Record
	if in.TargetID != "" {
		target, terr := r.Truth.LoadEntity(ctx, in.UniverseID, in.TargetID)
		if terr != nil || target.Character == nil {
			return nil, rpgerr.InvalidTarget("ability target invalid")
		}
		targets = append(targets, target)
	}

	saveRolls := make(map[string]effects.SaveResult, len(targets))
	if saveAbility, dc, ok := abilitySaveParams(a, in.DC); ok {
		for _, target := range targets {
			check, serr := skills.SavingThrow(ctx, r.Roller, target.Character, saveAbility, dc)
			if serr != nil {
				return nil, serr
			}
			saveRolls[target.ID] = effects.SaveResult{Success: check.Success, Roll: check.Roll}
		}
	}

	round := int(r.Clock())
	applied, err := r.Effects.ApplyAbilityEffects(ctx, a, actor, targets, round, saveRolls)
	if err != nil {
		return nil, err
	}
	sr := &SkillResult{Success: true, Outcome: worldmodel.OutcomeSuccess}
	for _, dmg := range applied.Damage {
		for _, target := range targets {
			if target.ID != dmg.TargetID {
				continue
			}
			target.Character.HP -= dmg.Amount
			if target.Character.HP < 0 {
				target.Character.HP = 0
			}
			if target.Character.Resources.Solo.ConcentratingOn != "" {
				if broken, _, _, cerr := r.Effects.CheckConcentration(ctx, target, dmg.Amount); cerr == nil && broken {
					sr.StateChanges = append(sr.StateChanges, "concentration_broken:"+target.ID)
				}
			}
		}
		sr.StateChanges = append(sr.StateChanges, "damage:"+dmg.TargetID)
	}
	for _, c := range applied.ConditionsApplied {
		sr.StateChanges = append(sr.StateChanges, "condition:"+string(c.Condition))
	}
	if applied.ConcentrationDropped != "" {
		sr.StateChanges = append(sr.StateChanges, "concentration_dropped:"+applied.ConcentrationDropped)
	}
	return sr, nil
}

// abilitySaveParams picks the ability score and DC targets roll
// against, if this ability's effects call for a save at all. A
// condition block names its own save ability and DC explicitly
// (spec.md §3); a damage block only carries save_half, so a
// DEX save against the caller-supplied DC is used, matching the SRD
// convention for area damage spells (e.g. fireball).
func abilitySaveParams(a *ability.Ability, fallbackDC int) (worldmodel.Ability, int, bool) {
	if a.Effects.Condition != nil && a.Effects.Condition.SaveAbility != "" {
		return worldmodel.Ability(a.Effects.Condition.SaveAbility), a.Effects.Condition.SaveDC, true
	}
	if a.Effects.Damage != nil && a.Effects.Damage.SaveHalf {
		return worldmodel.DEX, fallbackDC, true
	}
	return "", 0, false
}

// resolveFork implements spec.md §4.10's "fork -> multiverse.fork"
// dispatch entry: loads the requesting Universe record (a fork is a
// Universe-level operation, not an Entity one) and hands it to
// multiverse.Service.ForkUniverse.
func (r *Router) resolveFork(ctx context.Context, in TurnInput) (*SkillResult, error) {
	if r.Multiverse == nil {
		return nil, rpgerr.BadInput("router: no multiverse service configured")
	}
	parent, err := r.Truth.LoadUniverse(ctx, in.UniverseID)
	if err != nil {
		return nil, err
	}
	childID := in.ForkChildID
	if childID == "" {
		childID = uuid.NewString()
	}
	branch := in.ForkBranch
	if branch == "" {
		branch = childID
	}
	child, err := r.Multiverse.ForkUniverse(ctx, parent, childID, branch, in.ForkReason, in.ActorID)
	if err != nil {
		return nil, err
	}
	return &SkillResult{Success: true, Outcome: worldmodel.OutcomeNeutral, StateChanges: []string{"forked:" + child.ID}}, nil
}

// resolveMove implements spec.md §9's open-question resolution: a move
// intent naming a valid exit off the actor's current location is a
// strict location change, not narration. Exits unresolved (no location,
// unnamed exit) fall back to the narrative-only behavior.
func (r *Router) resolveMove(ctx context.Context, in TurnInput, actor *worldmodel.Record) (*SkillResult, error) {
	if in.LocationID == "" || in.Exit == "" {
		return &SkillResult{Success: true, Reason: "narrative-only intent, no mechanical resolution"}, nil
	}
	loc, err := r.Truth.LoadEntity(ctx, in.UniverseID, in.LocationID)
	if err != nil || loc.Location == nil {
		return &SkillResult{Success: false, Reason: "current location invalid"}, nil
	}
	dest, ok := loc.Location.Exits[in.Exit]
	if !ok {
		return &SkillResult{Success: false, Reason: "no such exit"}, nil
	}

	existing, err := r.Graph.QueryRelationships(ctx, in.UniverseID, actor.ID)
	if err != nil {
		return nil, err
	}
	for _, rel := range existing {
		if rel.Type != worldmodel.RelLocatedIn {
			continue
		}
		if err := r.Graph.DeleteRelationship(ctx, in.UniverseID, rel.ID); err != nil {
			return nil, err
		}
	}
	located := &worldmodel.Relationship{
		ID:         actor.ID + "-located-in-" + dest,
		UniverseID: in.UniverseID,
		From:       actor.ID,
		To:         dest,
		Type:       worldmodel.RelLocatedIn,
	}
	if err := r.Graph.CreateRelationship(ctx, located); err != nil {
		return nil, err
	}
	changes := []string{"moved_to:" + dest}
	if qchanges, qerr := r.advanceQuestsOn(ctx, in.UniverseID, "", dest); qerr == nil {
		changes = append(changes, qchanges...)
	}
	return &SkillResult{
		Success: true, Outcome: worldmodel.OutcomeNeutral,
		LocationID: dest, StateChanges: changes,
	}, nil
}

// advanceQuestsOn advances every active quest in universeID whose
// current objective names the given entity or location, persisting
// the updated quest (spec.md §3 Quest; SPEC_FULL.md supplements the
// distilled spec with a production caller for worldmodel.Quest.Advance,
// which otherwise has no mutator anywhere in the system).
func (r *Router) advanceQuestsOn(ctx context.Context, universeID, entityID, locationID string) ([]string, error) {
	if r.Quests == nil {
		return nil, nil
	}
	quests, err := r.Quests.ActiveQuestsByUniverse(ctx, universeID)
	if err != nil {
		return nil, err
	}
	var changes []string
	for _, q := range quests {
		if q.CurrentObjectiveIndex >= len(q.Objectives) {
			continue
		}
		obj := q.Objectives[q.CurrentObjectiveIndex]
		matched := (entityID != "" && obj.TargetEntityID == entityID) || (locationID != "" && obj.TargetLocationID == locationID)
		if !matched {
			continue
		}
		q.Advance(1)
		if err := r.Quests.SaveQuest(ctx, q); err != nil {
			return changes, err
		}
		changes = append(changes, "quest_progress:"+q.ID)
		if q.Status == worldmodel.QuestCompleted {
			changes = append(changes, "quest_completed:"+q.ID)
		}
	}
	return changes, nil
}

// resolveNPCTurn implements SPEC_FULL.md's §4.8 production wiring:
// score the candidate action set via npc.Decide, then delegate to
// whichever existing dispatch entry the winning action corresponds to.
// The winner's result is returned as-is with the delegated intent
// recorded so record() logs the actual mechanical event, not a
// generic "npc_turn" wrapper.
func (r *Router) resolveNPCTurn(ctx context.Context, in TurnInput, actor *worldmodel.Record) (*SkillResult, error) {
	decision := npc.Decide(in.Personality, in.Motivations, in.NPCContext)
	delegated := in
	delegated.Intent = intentForNPCAction(decision.Chosen)

	result, err := r.resolve(ctx, delegated, actor)
	if err != nil {
		return nil, err
	}
	result.ResolvedIntent = delegated.Intent
	result.StateChanges = append(result.StateChanges, "npc_action:"+string(decision.Chosen))
	return result, nil
}

// intentForNPCAction maps npc.Action, spec.md §4.8's candidate action
// set, onto the router's own dispatch table.
func intentForNPCAction(a npc.Action) Intent {
	switch a {
	case npc.ActionAttack:
		return IntentAttack
	case npc.ActionFlee:
		return IntentMove
	case npc.ActionNegotiate:
		return IntentPersuade
	case npc.ActionAssist:
		return IntentInteract
	case npc.ActionUseAbility:
		return IntentUseAbility
	case npc.ActionLeave:
		return IntentMove
	default: // npc.ActionObserve
		return IntentLook
	}
}

// record appends the turn's event(s) before the repo reflects any
// state change (spec.md §3 Lifecycle: "the event is appended before
// the repo is updated, so the log is the ground truth").
func (r *Router) record(ctx context.Context, in TurnInput, result *SkillResult) ([]*worldmodel.Event, error) {
	intent := in.Intent
	if result.ResolvedIntent != "" {
		intent = result.ResolvedIntent
	}
	ev := &worldmodel.Event{
		ID:              uuid.NewString(),
		UniverseID:      in.UniverseID,
		InGameTimestamp: r.Clock(),
		WallTimestamp:   time.Now(),
		ActorID:         in.ActorID,
		Type:            eventTypeForIntent(intent),
		Outcome:         result.Outcome,
	}
	if in.TargetID != "" {
		ev.TargetID = &in.TargetID
	}
	if result.LocationID != "" {
		ev.LocationID = &result.LocationID
	}
	if result.Roll != 0 {
		roll := result.Roll
		ev.Roll = &roll
	}
	if result.MoveType != "" {
		ev.Payload = map[string]any{"move_type": result.MoveType, "move_narrative": result.MoveNarrative}
	}
	if err := r.Truth.AppendEvent(ctx, ev); err != nil {
		return nil, err
	}
	return []*worldmodel.Event{ev}, nil
}

func eventTypeForIntent(i Intent) worldmodel.EventType {
	switch i {
	case IntentAttack:
		return worldmodel.EventCombatRound
	case IntentTalk, IntentPersuade, IntentIntimidate, IntentDeceive, IntentAskQuestion:
		return worldmodel.EventDialogue
	case IntentMove:
		return worldmodel.EventTravel
	case IntentFork:
		return worldmodel.EventFork
	case IntentUseAbility, IntentCastSpell:
		return worldmodel.EventResourceUsed
	default:
		return worldmodel.EventDialogue
	}
}
