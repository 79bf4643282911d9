package massbal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/types"
)

func TestPercentError(t *testing.T) {
	assert.Zero(t, PercentError(0, 0))
	assert.Zero(t, PercentError(12.5, 12.5))
	assert.InDelta(t, 5, PercentError(100, 95), 1e-12)
	assert.InDelta(t, -5, PercentError(95, 100), 1e-12)
}

func TestTotalsCategories(t *testing.T) {
	var tot Totals
	tot.AddInflow(types.DryWeather, 1)
	tot.AddInflow(types.WetWeather, 2)
	tot.AddInflow(types.Groundwater, 3)
	tot.AddInflow(types.RDII, 4)
	tot.AddInflow(types.External, 5)
	assert.Equal(t, Totals{DwInflow: 1, WwInflow: 2, GwInflow: 3, IiInflow: 4, ExInflow: 5}, tot)
	tot.InitStorage = 10
	tot.Outflow, tot.Flooding, tot.FinalStorage = 20, 2, 3
	tot.Finalize()
	assert.Zero(t, tot.PctError)
}

func TestAccountantBalanced(t *testing.T) {
	net := types.NewNetwork("")
	require.NoError(t, net.AddPollutant(&types.Pollutant{ID: "TSS", Units: types.MgPerL}))
	require.NoError(t, net.AddNode(&types.Node{ID: "J1", Type: types.Storage, SurfArea: 100, FullDepth: 5, InitDepth: 1}))
	net.Reset()
	net.Nodes[0].Qual[0] = 10

	a := NewAccountant(net)
	assert.InDelta(t, 100, a.Flow.InitStorage, 1e-12)
	assert.InDelta(t, 1, a.Qual[0].InitStorage, 1e-12)

	sb := NewStepBudget(net.Pollutants)
	sb.AddInflow(types.External, 2, []float64{10}, 0, 10)
	sb.AddOutflow(1, []float64{10}, 0, 10)
	sb.AddEvap(0.5, 0, 10)
	a.Add(sb)

	// 蓄量增加 20-10-5 = 5 m³,质量增加 0.1 kg
	net.Nodes[0].SetDepth(1.05)
	net.Nodes[0].Qual[0] = 1100.0 / 105
	a.Finalize(net)
	assert.InDelta(t, 20, a.Flow.ExInflow, 1e-12)
	assert.InDelta(t, 5, a.Flow.EvapLoss, 1e-12)
	assert.InDelta(t, 0, a.Flow.PctError, 1e-9)
	assert.InDelta(t, 0.2, a.Qual[0].ExInflow, 1e-12)
	assert.InDelta(t, 0.1, a.Qual[0].Outflow, 1e-12)
	assert.InDelta(t, 0, a.Qual[0].PctError, 1e-9)
}

func TestStepBudgetIgnoresNonPositive(t *testing.T) {
	sb := NewStepBudget(nil)
	sb.AddInflow(types.DryWeather, -1, nil, 0, 10)
	sb.AddOutflow(0, nil, 0, 10)
	sb.AddFlooding(-2, nil, 0, 10)
	sb.AddSeep(0, nil, 0, 10)
	assert.Equal(t, Budget{}, sb.Flow)

	sb.AddFlooding(1, nil, 20, 5)
	assert.InDelta(t, 5, sb.Flow.Flooding, 1e-12)
	assert.InDelta(t, 100, sb.Temp.Flooding, 1e-12)
	sb.Reset()
	assert.Equal(t, Budget{}, sb.Flow)
	assert.Equal(t, Budget{}, sb.Temp)
}
