// Package npc implements spec.md §4.8's NPC decision model: a
// weighted, context-modulated action score over a fixed candidate set,
// driven by Big-Five personality traits and motivations.
package npc

import "sort"

// Trait is one of the Big-Five personality dimensions, each 0-100
// (spec.md §4.8).
type Trait string

// The closed Big-Five trait set.
const (
	Openness          Trait = "openness"
	Conscientiousness Trait = "conscientiousness"
	Extraversion      Trait = "extraversion"
	Agreeableness     Trait = "agreeableness"
	Neuroticism       Trait = "neuroticism"
)

// Personality is an NPC's Big-Five profile, each score in [0, 100].
type Personality map[Trait]int

// Action is the closed candidate action set (spec.md §4.8).
type Action string

// The closed action set, in tie-break priority order (lowest id wins).
const (
	ActionAttack    Action = "attack"
	ActionFlee      Action = "flee"
	ActionNegotiate Action = "negotiate"
	ActionAssist    Action = "assist"
	ActionObserve   Action = "observe"
	ActionUseAbility Action = "use_ability"
	ActionLeave     Action = "leave"
)

// actionOrder fixes the tie-break order: lowest index wins ties.
var actionOrder = []Action{ActionAttack, ActionFlee, ActionNegotiate, ActionAssist, ActionObserve, ActionUseAbility, ActionLeave}

func actionID(a Action) int {
	for i, candidate := range actionOrder {
		if candidate == a {
			return i
		}
	}
	return len(actionOrder)
}

// Motivation is a free-form driver name (e.g. "aggressive", "loyal",
// "greedy"); weights are looked up by name against Context.Motivations.
type Motivation string

// Context is the situational input to decision scoring (spec.md §4.8).
type Context struct {
	Danger            int // 0-20, from the current location
	RecentEventCount  int
	VisibleEntityCount int
	KnownRelationshipTrust float64 // signed trust toward the acting target, if known
}

// Decision is the scored output of Decide (spec.md §4.8: "the chosen
// action plus the per-action scores for tests").
type Decision struct {
	Chosen Action
	Scores map[Action]float64
}

// baseWeight gives each (trait, action) pair its base contribution
// coefficient (spec.md §4.8 example: "aggressive motivation x
// (100 - agreeableness)" generalizes to one coefficient table).
func baseWeight(trait Trait, action Action) float64 {
	switch {
	case trait == Agreeableness && action == ActionAttack:
		return -1.0
	case trait == Agreeableness && action == ActionNegotiate:
		return 1.0
	case trait == Agreeableness && action == ActionAssist:
		return 0.8
	case trait == Neuroticism && action == ActionFlee:
		return 1.0
	case trait == Neuroticism && action == ActionObserve:
		return 0.4
	case trait == Extraversion && action == ActionNegotiate:
		return 0.6
	case trait == Extraversion && action == ActionAssist:
		return 0.4
	case trait == Openness && action == ActionUseAbility:
		return 0.5
	case trait == Conscientiousness && action == ActionObserve:
		return 0.5
	case trait == Conscientiousness && action == ActionLeave:
		return 0.2
	default:
		return 0
	}
}

// motivationWeight mirrors spec.md §4.8's example coefficient:
// aggressive motivations scale attack by (100 - agreeableness).
func motivationWeight(m Motivation, action Action, p Personality) float64 {
	switch {
	case m == "aggressive" && action == ActionAttack:
		return float64(100-p[Agreeableness]) / 100
	case m == "loyal" && action == ActionAssist:
		return 1.0
	case m == "greedy" && action == ActionUseAbility:
		return 0.5
	case m == "cautious" && action == ActionObserve:
		return 0.8
	case m == "cautious" && action == ActionFlee:
		return 0.5
	default:
		return 0
	}
}

// Decide scores every candidate action and returns the winner, with
// ties broken by lowest action id (spec.md §4.8).
func Decide(p Personality, motivations []Motivation, ctx Context) *Decision {
	scores := make(map[Action]float64, len(actionOrder))
	for _, action := range actionOrder {
		var score float64
		for trait, value := range p {
			score += baseWeight(trait, action) * (float64(value) / 100)
		}
		for _, m := range motivations {
			score += motivationWeight(m, action, p)
		}
		score += contextModifier(action, p, ctx)
		scores[action] = score
	}

	best := actionOrder[0]
	bestScore := scores[best]
	for _, action := range actionOrder[1:] {
		s := scores[action]
		if s > bestScore || (s == bestScore && actionID(action) < actionID(best)) {
			best, bestScore = action, s
		}
	}
	return &Decision{Chosen: best, Scores: scores}
}

// contextModifier applies spec.md §4.8's context coupling: rising
// danger increases flee/attack weight for high-neuroticism NPCs.
func contextModifier(action Action, p Personality, ctx Context) float64 {
	var mod float64
	if ctx.Danger >= 10 {
		neuroticism := float64(p[Neuroticism]) / 100
		switch action {
		case ActionFlee:
			mod += neuroticism * float64(ctx.Danger) / 20
		case ActionAttack:
			mod += (1 - neuroticism) * float64(ctx.Danger) / 40
		}
	}
	if ctx.KnownRelationshipTrust < 0 {
		switch action {
		case ActionAttack:
			mod += -ctx.KnownRelationshipTrust * 0.5
		case ActionNegotiate:
			mod += ctx.KnownRelationshipTrust * 0.5
		}
	}
	return mod
}

// RankedActions returns the candidate actions ordered best-to-worst,
// useful for tests inspecting more than just the winner.
func (d *Decision) RankedActions() []Action {
	ranked := append([]Action(nil), actionOrder...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return d.Scores[ranked[i]] > d.Scores[ranked[j]]
	})
	return ranked
}
