package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_AggressiveLowAgreeablenessAttacks(t *testing.T) {
	p := Personality{Agreeableness: 10, Neuroticism: 20, Extraversion: 50, Openness: 50, Conscientiousness: 50}
	decision := Decide(p, []Motivation{"aggressive"}, Context{Danger: 2})
	assert.Equal(t, ActionAttack, decision.Chosen)
}

func TestDecide_HighNeuroticismHighDangerFlees(t *testing.T) {
	p := Personality{Agreeableness: 60, Neuroticism: 95, Extraversion: 20, Openness: 30, Conscientiousness: 40}
	decision := Decide(p, nil, Context{Danger: 18})
	assert.Equal(t, ActionFlee, decision.Chosen)
}

func TestDecide_TiesBreakByLowestActionID(t *testing.T) {
	p := Personality{}
	decision := Decide(p, nil, Context{})
	// with zero personality/motivation/context every score is 0; the
	// tie must resolve to the first action in actionOrder.
	assert.Equal(t, ActionAttack, decision.Chosen)
}
