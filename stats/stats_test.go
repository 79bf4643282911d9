package stats

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/types"
)

func nodes(n int) []*types.Node {
	list := make([]*types.Node, n)
	for i := range list {
		list[i] = &types.Node{ID: fmt.Sprintf("N%d", i), Index: i}
	}
	return list
}

func TestTrackerKeepsLargest(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	tr := NewTracker(3)
	for i, n := range nodes(len(values)) {
		tr.Insert(n, values[i])
	}
	assert.Equal(t, []float64{9, 6, 5}, tr.Values())
	assert.Equal(t, 5, tr.Top().Index())

	ns := nodes(len(values))
	rng := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		order := rng.Perm(len(values))
		tr.Reset()
		for _, i := range order {
			tr.Insert(ns[i], values[i])
		}
		require.Equal(t, []float64{9, 6, 5}, tr.Values(), "order %v", order)
		e := tr.Entries()
		assert.Equal(t, []int{5, 7, 4}, []int{e[0].Index(), e[1].Index(), e[2].Index()}, "order %v", order)
	}
}

func TestTrackerTiesKeepFirst(t *testing.T) {
	ns := nodes(3)
	tr := NewTracker(2)
	for _, n := range ns {
		tr.Insert(n, 5)
	}
	e := tr.Entries()
	require.Len(t, e, 2)
	assert.Equal(t, 0, e[0].Index())
	assert.Equal(t, 1, e[1].Index())

	one := NewTracker(1)
	assert.True(t, one.Insert(ns[0], 5))
	assert.False(t, one.Insert(ns[1], 5))
	assert.Equal(t, 0, one.Top().Index())
}

func TestTrackerEmptySlots(t *testing.T) {
	tr := NewTracker(3)
	tr.Insert(nodes(1)[0], 2)
	e := tr.Entries()
	assert.True(t, e[0].Used())
	assert.False(t, e[1].Used())
	assert.Equal(t, -1, e[2].Index())

	zero := NewTracker(0)
	assert.False(t, zero.Insert(nodes(1)[0], 1))
	assert.False(t, zero.Top().Used())
}

func TestCountFlowTurns(t *testing.T) {
	assert.Equal(t, 2, CountFlowTurns([]float64{1, 2, 3, 2, 1, 2, 2}))
	assert.Equal(t, 3, CountFlowTurns([]float64{1, 2, 3, 2, 1, 2, 1}))
	assert.Equal(t, 0, CountFlowTurns([]float64{1, 2, 3, 4, 5}))
	assert.Equal(t, 0, CountFlowTurns([]float64{1, 2, 2, 1}))
	assert.Equal(t, 0, CountFlowTurns(nil))
}

func TestLinkObserveFlowMatchesCount(t *testing.T) {
	series := [][]float64{
		{1, 2, 3, 2, 1, 2, 1},
		{1, 2, 3, 2, 1, 2, 2},
		{1, 2, 2, 1},
		{5, 4, 3},
	}
	for _, s := range series {
		l := &types.Link{}
		l.Reset(0)
		for _, q := range s {
			l.ObserveFlow(q)
		}
		assert.Equal(t, CountFlowTurns(s), l.FlowTurns, "%v", s)
	}
}

func TestTimeStepHistogram(t *testing.T) {
	ts := NewTimeSteps(30, 0.5)
	assert.Equal(t, [types.TimeLevels]float64{30, 15, 7.5, 3.75, 1.875, 0.5}, ts.Intervals)
	steps := []float64{30, 10, 0.2, 20, 2, 1}
	for _, dt := range steps {
		ts.Record(dt, 2, true, false)
	}
	assert.Equal(t, len(steps), ts.BucketTotal())
	assert.Equal(t, 2, ts.Counts[1])
	assert.Equal(t, 1, ts.Counts[2])
	assert.Equal(t, 1, ts.Counts[4])
	assert.Equal(t, 2, ts.Counts[5])
	assert.InDelta(t, 0.2, ts.MinStep(), 1e-12)
	assert.InDelta(t, 30, ts.MaxTimeStep, 1e-12)
	assert.InDelta(t, 2, ts.AvgTrials(), 1e-12)
}

func TestTimeStepAverages(t *testing.T) {
	ts := NewTimeSteps(10, 1)
	ts.Record(10, 1, true, true)
	ts.Record(10, 3, false, false)
	assert.InDelta(t, 10, ts.AvgTimeStep(), 1e-12)
	assert.InDelta(t, 50, ts.PctSteady(), 1e-12)
	assert.InDelta(t, 50, ts.PctNonConverged(), 1e-12)

	empty := NewTimeSteps(10, 1)
	assert.Zero(t, empty.AvgTimeStep())
	assert.Zero(t, empty.MinStep())
	assert.Zero(t, empty.PctSteady())
}

func TestCriticalFinalize(t *testing.T) {
	net := types.NewNetwork("")
	for _, id := range []string{"A", "B", "C"} {
		require.NoError(t, net.AddNode(&types.Node{ID: id}))
	}
	net.Nodes[2].Type = types.Outfall
	require.NoError(t, net.AddLink(&types.Link{ID: "L1", Width: 1, Height: 1, Length: 10}, "A", "B"))
	net.Reset()

	c := NewCritical(2)
	for range 4 {
		c.UpdateStep(net, net.Links[0], nil)
	}
	c.UpdateStep(net, net.Nodes[1], net.Nodes[1])
	net.Nodes[0].Stats.MassBalanceErr = -3
	net.Nodes[1].Stats.MassBalanceErr = 1
	net.Nodes[2].Stats.MassBalanceErr = 50
	c.Finalize(net)

	assert.Equal(t, 5, c.Steps())
	assert.Equal(t, []float64{3, 1}, c.MassBalance.Values())
	assert.Equal(t, "L1", c.Courant.Top().Element.ElementID())
	assert.InDelta(t, 80, c.Courant.Top().Value, 1e-12)
	vis := c.VisibleNonConverged()
	require.Len(t, vis, 1)
	assert.Equal(t, "B", vis[0].Element.ElementID())
	assert.InDelta(t, 0.2, vis[0].Value, 1e-12)
}
