package iface

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/config"
	"hydroroute/graph"
	"hydroroute/types"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testNetwork(t *testing.T, temp bool) *types.Network {
	net := types.NewNetwork("iface")
	require.NoError(t, net.AddPollutant(&types.Pollutant{ID: "TSS", Units: types.MgPerL}))
	require.NoError(t, net.AddNode(&types.Node{ID: "J1"}))
	require.NoError(t, net.AddNode(&types.Node{ID: "O1", Type: types.Outfall}))
	require.NoError(t, net.AddLink(&types.Link{ID: "C1", Width: 1, Height: 1, Length: 10}, "J1", "O1"))
	if temp {
		net.Temperature = types.Temperature{ID: "T", Units: types.Celsius, Active: true}
	}
	net.Reset()
	return net
}

func writeFile(t *testing.T, lines ...string) string {
	name := filepath.Join(t.TempDir(), "inflows.txt")
	require.NoError(t, os.WriteFile(name, []byte(strings.Join(lines, "\n")), 0o644))
	return name
}

var header = []string{
	"SWMM5 Interface File",
	"test",
	"5    - reporting time step in sec",
	"2    - number of constituents as listed below:",
	"FLOW CMS",
	"TSS MG/L",
	"2    - number of nodes as listed below:",
	"J1",
	"X9",
	"Node             Year Mon Day Hr  Min Sec FLOW       TSS",
}

func TestReaderInterpolation(t *testing.T) {
	name := writeFile(t, append(header,
		"J1  2024 01 01 00 00 00  10.0 1.0",
		"X9  2024 01 01 00 00 00  99.0 0.0",
		"J1  2024 01 01 00 00 05  15.0 2.0",
		"X9  2024 01 01 00 00 05  99.0 0.0",
		"",
		"J1  2024 01 01 00 00 10  20.0 3.0",
		"X9  2024 01 01 00 00 10  99.0 0.0",
	)...)
	r, err := OpenReader(name, testNetwork(t, false))
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 5, r.Step)
	assert.Equal(t, []int{0, -1}, r.Nodes)
	assert.Equal(t, []string{"X9"}, r.Unmatched())

	require.NoError(t, r.Advance(t0.Add(-time.Second)))
	assert.False(t, r.Active())

	cases := []struct {
		at   time.Duration
		flow float64
		tss  float64
	}{
		{0, 10, 1},
		{2500 * time.Millisecond, 12.5, 1.5},
		{5 * time.Second, 15, 2},
		{7500 * time.Millisecond, 17.5, 2.5},
		{10 * time.Second, 20, 3},
	}
	for _, c := range cases {
		require.NoError(t, r.Advance(t0.Add(c.at)))
		require.True(t, r.Active(), c.at)
		v := r.Value(0)
		assert.InDelta(t, c.flow, v.Flow, 1e-9, c.at)
		assert.InDelta(t, c.tss, v.Qual[0], 1e-9, c.at)
	}

	calls := 0
	r.ForEach(func(node int, flow float64, qual []float64, _ float64) {
		calls++
		assert.Equal(t, 0, node)
		assert.InDelta(t, 20, flow, 1e-9)
	})
	assert.Equal(t, 1, calls)

	require.NoError(t, r.Advance(t0.Add(11*time.Second)))
	assert.False(t, r.Active())
	r.ForEach(func(int, float64, []float64, float64) { t.Fatal("no inflow after end of file") })
}

func TestReaderFlowUnits(t *testing.T) {
	lines := append([]string(nil), header...)
	lines[4] = "FLOW LPS"
	name := writeFile(t, append(lines,
		"J1  2024 01 01 00 00 00  250 0",
		"X9  2024 01 01 00 00 00  0 0",
	)...)
	r, err := OpenReader(name, testNetwork(t, false))
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Advance(t0))
	assert.InDelta(t, 0.25, r.Value(0).Flow, 1e-12)
}

func TestReaderErrors(t *testing.T) {
	net := testNetwork(t, false)

	_, err := OpenReader(filepath.Join(t.TempDir(), "missing.txt"), net)
	assert.Equal(t, types.ErrRoutingFileOpen, types.CodeOf(err))

	bad := append([]string{"SWMM4 Interface File"}, header[1:]...)
	_, err = OpenReader(writeFile(t, bad...), net)
	assert.Equal(t, types.ErrRoutingFileFormat, types.CodeOf(err))

	units := append([]string(nil), header...)
	units[5] = "TSS UG/L"
	_, err = OpenReader(writeFile(t, units...), net)
	require.Error(t, err)
	assert.Equal(t, types.ErrRoutingFileNoMatch, types.CodeOf(err))
	assert.Equal(t, 6, err.(*types.Error).Line)

	truncated := append(append([]string(nil), header...), "J1  2024 01 01 00 00 00  10.0 1.0")
	_, err = OpenReader(writeFile(t, truncated...), net)
	assert.Equal(t, types.ErrRoutingFileFormat, types.CodeOf(err))

	garbled := append(append([]string(nil), header...),
		"J1  2024 01 01 00 00 00  ten 1.0",
		"X9  2024 01 01 00 00 00  0 0",
	)
	_, err = OpenReader(writeFile(t, garbled...), net)
	require.Error(t, err)
	assert.Equal(t, 11, err.(*types.Error).Line)
}

func TestWriterRoundTrip(t *testing.T) {
	net := testNetwork(t, true)
	g, err := graph.NewGraph(net)
	require.NoError(t, err)
	s := &config.Settings{FlowUnits: types.LPS, RouteModel: types.DynamicWave, ReportStep: 10 * time.Second}
	name := filepath.Join(t.TempDir(), "outflows.txt")

	w, err := CreateWriter(name, g, s)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, w.Outlets)
	o := net.Nodes[1]
	o.Inflow, o.Qual[0], o.Temp = 0.5, 4, 12
	require.NoError(t, w.Save(t0))
	o.Inflow, o.Qual[0], o.Temp = 1.5, 8, 14
	require.NoError(t, w.Save(t0.Add(10*time.Second)))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SWMM5 Interface File\niface\n10   - reporting time step in sec"))
	assert.Contains(t, string(data), "\nFLOW LPS\nTSS MG/L\nT C\n1    - number of nodes as listed below:\nO1\n")
	assert.Contains(t, string(data), "\nO1               2024 01  01  00  00  00  500.000000")

	// 下游项目以排放口名称作为入流节点
	down := types.NewNetwork("down")
	require.NoError(t, down.AddPollutant(&types.Pollutant{ID: "TSS", Units: types.MgPerL}))
	require.NoError(t, down.AddNode(&types.Node{ID: "O1"}))
	down.Temperature = types.Temperature{ID: "T", Units: types.Celsius, Active: true}
	down.Reset()
	r, err := OpenReader(name, down)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, types.LPS, r.FlowUnits)
	require.NoError(t, r.Advance(t0.Add(5*time.Second)))
	v := r.Value(0)
	assert.InDelta(t, 1.0, v.Flow, 1e-9)
	assert.InDelta(t, 6.0, v.Qual[0], 1e-9)
	assert.InDelta(t, 13.0, v.Temp, 1e-9)
}

func TestWriterCreateError(t *testing.T) {
	net := testNetwork(t, false)
	g, err := graph.NewGraph(net)
	require.NoError(t, err)
	_, err = CreateWriter(filepath.Join(t.TempDir(), "no", "such", "dir.txt"), g, &config.Settings{})
	assert.Equal(t, types.ErrRoutingFileOpen, types.CodeOf(err))
}
