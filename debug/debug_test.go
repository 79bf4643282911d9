package debug

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/stats"
	"hydroroute/types"
)

func testNetwork(t *testing.T) *types.Network {
	net := types.NewNetwork("debug")
	require.NoError(t, net.AddNode(&types.Node{ID: "J1", Invert: 10}))
	require.NoError(t, net.AddNode(&types.Node{ID: "O1", Type: types.Outfall, Invert: 9}))
	require.NoError(t, net.AddLink(&types.Link{ID: "C1", Length: 100, Width: 1, Height: 1}, "J1", "O1"))
	net.Reset()
	return net
}

func record(t *testing.T) *Charts {
	net := testNetwork(t)
	c := &Charts{}
	c.Init(net)
	for i := range 4 {
		net.Nodes[0].SetDepth(0.1 * float64(i))
		net.Links[0].Flow = 0.5 * float64(i)
		c.Update(float64(i)*900, net)
	}
	return c
}

func TestRecord(t *testing.T) {
	c := record(t)
	assert.True(t, c.IsDebug())
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, []string{"J1", "O1"}, c.Nodes)
	assert.Equal(t, [][2]int{{0, 1}}, c.Edges)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75}, c.Time)
	assert.InDelta(t, 10.3, c.Head[3][0], 1e-12)
	assert.Equal(t, 1.5, c.Flow[3][0])

	var buf bytes.Buffer
	require.NoError(t, c.Record.Render(&buf))
	var back Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, c.Record, back)

	c.Init(testNetwork(t))
	assert.Zero(t, c.Len())
}

func TestChartsPage(t *testing.T) {
	c := record(t)
	rec := httptest.NewRecorder()
	c.Handler(rec, httptest.NewRequest("GET", "/charts", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "J1")
	assert.Contains(t, body, "C1")
}

func TestHydrograph(t *testing.T) {
	c := record(t)
	p, err := c.Hydrograph()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(p, &buf))
	assert.Equal(t, "\x89PNG", buf.String()[:4])

	_, err = c.Hydrograph(3)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "hydrograph.svg")
	require.NoError(t, SavePlot(p, file))
	assert.FileExists(t, file)
}

func TestStepHistogram(t *testing.T) {
	ts := stats.NewTimeSteps(30, 0.5)
	ts.Record(30, 1, true, false)
	ts.Record(5, 1, true, false)
	p, err := StepHistogram(ts)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(p, &buf))
	assert.Greater(t, buf.Len(), 0)

	_, err = StepHistogram(stats.NewTimeSteps(30, 0.5))
	assert.NoError(t, err)
}
