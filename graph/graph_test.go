package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/types"
)

// 汇流管网: A -> C, B -> C, C -> D(排放口),另有孤立节点 E
func testNetwork(t *testing.T) *types.Network {
	net := types.NewNetwork("graph")
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		require.NoError(t, net.AddNode(&types.Node{ID: id}))
	}
	net.Nodes[3].Type = types.Outfall
	for _, l := range [][3]string{{"L3", "C", "D"}, {"L1", "A", "C"}, {"L2", "B", "C"}} {
		require.NoError(t, net.AddLink(&types.Link{ID: l[0], Width: 1, Height: 1, Length: 10}, l[1], l[2]))
	}
	return net
}

func TestTopoOrder(t *testing.T) {
	g, err := NewGraph(testNetwork(t))
	require.NoError(t, err)
	order, err := g.TopoOrder()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)

	nodes, err := g.NodeOrder()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, nodes)
	assert.Equal(t, []int{1, 2, 0}, g.Incident(2))
	assert.Equal(t, 1, g.Nodes[2].Degree)
	assert.Equal(t, 0, g.Nodes[3].Degree)
}

func TestOutlets(t *testing.T) {
	g, err := NewGraph(testNetwork(t))
	require.NoError(t, err)
	assert.Equal(t, []int{3}, g.Outlets(types.DynamicWave))
	assert.Equal(t, []int{3, 4}, g.Outlets(types.KinematicWave))
	assert.True(t, g.IsOutlet(4, types.SteadyFlow))
	assert.False(t, g.IsOutlet(4, types.DynamicWave))
}

func TestCycle(t *testing.T) {
	net := testNetwork(t)
	require.NoError(t, net.AddLink(&types.Link{ID: "back", Width: 1, Height: 1, Length: 10}, "C", "A"))
	g, err := NewGraph(net)
	require.NoError(t, err)
	_, err = g.TopoOrder()
	assert.Equal(t, types.ErrInput, types.CodeOf(err))
	_, err = g.NodeOrder()
	assert.Error(t, err)
}
