package hydroroute

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/debug"
	"hydroroute/types"
)

const upstream = `
title: upstream
options:
  flow_units: CMS
  route_model: kinwave
  start: 2024-01-01 00:00:00
  end: 2024-01-01 02:00:00
  report_step: 300
  route_step: 30
  outflows_file: outflows.txt
pollutants:
  - {id: TSS, units: MG/L}
nodes:
  - {id: J1, invert: 10, max_depth: 2}
  - {id: OUT, type: outfall, invert: 9}
links:
  - {id: C1, from: J1, to: OUT, length: 200, width: 1, height: 1}
inflows:
  - {node: J1, category: dwf, baseline: 0.1, quality: {TSS: 25}}
`

const downstream = `
title: downstream
options:
  route_model: steady
  start: 2024-01-01 00:00:00
  end: 2024-01-01 02:00:00
  route_step: 60
  inflows_file: outflows.txt
pollutants:
  - {id: TSS, units: MG/L}
nodes:
  - {id: OUT, invert: 5}
  - {id: SINK, type: outfall, invert: 4}
links:
  - {id: C9, from: OUT, to: SINK, length: 100, width: 1, height: 1}
`

func writeProject(t *testing.T, dir, name, body string) string {
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	return file
}

func TestSimulateChain(t *testing.T) {
	dir := t.TempDir()
	charts := &debug.Charts{}
	up, err := Simulate(context.Background(), writeProject(t, dir, "up.yaml", upstream), func(p *Project) {
		p.Debug = charts
	})
	require.NoError(t, err)
	assert.Equal(t, 25, charts.Len())
	assert.InDelta(t, 0, up.Router.Mass.Flow.PctError, 1e-6)
	assert.FileExists(t, filepath.Join(dir, "outflows.txt"))

	var buf bytes.Buffer
	require.NoError(t, up.WriteReport(&buf))
	assert.Contains(t, buf.String(), "\n  upstream")
	assert.Contains(t, buf.String(), "Flow Routing Method ...... KINWAVE")

	down, err := Simulate(context.Background(), writeProject(t, dir, "down.yaml", downstream), nil)
	require.NoError(t, err)
	f := down.Router.Mass.Flow
	assert.Greater(t, f.ExInflow, 0.0)
	assert.InDelta(t, f.ExInflow, f.Outflow, 1e-6)
	assert.Greater(t, down.Router.Mass.Qual[0].ExInflow, 0.0)
}

func TestSameInterfaceFiles(t *testing.T) {
	dir := t.TempDir()
	body := strings.Replace(downstream, "inflows_file: outflows.txt", "inflows_file: route.txt\n  outflows_file: ROUTE.txt", 1)
	p, err := Simulate(context.Background(), writeProject(t, dir, "p.yaml", body), func(*Project) {
		t.Fatal("set must not run after a failed load")
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrRoutingFileNames, types.CodeOf(err))
	assert.Nil(t, p.Router)
	assert.NoFileExists(t, filepath.Join(dir, "ROUTE.txt"))

	var buf bytes.Buffer
	assert.Equal(t, err, p.WriteReport(&buf))
	assert.Contains(t, buf.String(), "inflow and outflow interface files have same name")
	assert.NotContains(t, buf.String(), "Analysis Options")
}

func TestMissingInflowFile(t *testing.T) {
	dir := t.TempDir()
	p := NewProject()
	require.NoError(t, p.Load(writeProject(t, dir, "down.yaml", downstream)))
	err := p.Start()
	assert.Equal(t, types.ErrRoutingFileOpen, types.CodeOf(err))
	// 之后的阶段直接返回第一个错误
	assert.Equal(t, err, p.Run(context.Background()))
	assert.Equal(t, err, p.Load("other.yaml"))
	assert.NoError(t, p.Close())
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	p := NewProject()
	require.NoError(t, p.Load(writeProject(t, dir, "up.yaml", upstream)))
	out := filepath.Join(dir, "copy.yaml")
	require.NoError(t, p.Export(out))

	q := NewProject()
	require.NoError(t, q.Load(out))
	assert.Equal(t, p.Settings.RouteModel, q.Settings.RouteModel)
	assert.Equal(t, len(p.Net.Nodes), len(q.Net.Nodes))
	assert.Equal(t, p.Net.Inflows[0].Quality, q.Net.Inflows[0].Quality)

	assert.Error(t, NewProject().Export(out))
}
