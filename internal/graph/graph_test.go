package graph

import (
	"testing"

	"ability-lst/internal/ability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodesAndEdges(t *testing.T) {
	pa := ability.New("Power Attack", ability.KindFeat, ability.DnD35e)
	gc := ability.New("Great Cleave", ability.KindFeat, ability.DnD35e)
	gc.RequiredFeats = []string{"Cleave", "Power Attack"}

	nodes, edges := NodesAndEdges([]*ability.Ability{pa, gc}, ability.DnD35e, "core.lst")
	require.Len(t, nodes, 2)
	assert.Equal(t, "35e/Power Attack", nodes[0].ID)
	assert.Equal(t, "Feat", nodes[1].Kind)
	assert.Equal(t, "core.lst", nodes[1].Source)
	assert.Equal(t, []Edge{
		{FromID: "35e/Great Cleave", ToID: "35e/Cleave"},
		{FromID: "35e/Great Cleave", ToID: "35e/Power Attack"},
	}, edges)
}

func TestKeyFromID(t *testing.T) {
	assert.Equal(t, "Dodge", keyFromID(NodeID(ability.Pathfinder1e, "Dodge")))
	assert.Equal(t, "Weapon Focus (Longsword/Shortsword)", keyFromID("pf1e/Weapon Focus (Longsword/Shortsword)"))
	assert.Equal(t, "bare", keyFromID("bare"))
}
