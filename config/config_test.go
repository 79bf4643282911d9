package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydroroute/types"
)

const sample = `
title: two pipes
options:
  flow_units: LPS
  route_model: kinwave
  start: 2024-01-01 00:00
  end: 2024-01-01 06:00
  report_step: 600
  inflows_file: in.txt
pollutants:
  - {id: TSS, units: MG/L, decay: 0.5}
temperature: {id: T, units: C}
nodes:
  - {id: J1, invert: 10, max_depth: 2, evap_rate: 8.64}
  - {id: S1, type: storage, invert: 9, max_depth: 3, area: 500, seep_rate: 3.6}
  - {id: O1, type: outfall, invert: 8, outfall: fixed, stage: 8.5}
links:
  - {id: C1, from: J1, to: S1, length: 100, width: 1, height: 1}
  - {id: P1, type: pump, from: S1, to: O1, pump_rate: 200}
inflows:
  - node: J1
    category: dwf
    baseline: 50
    series: [[3600, 100], [0, 0]]
    quality: {TSS: 20}
    temperature: 15
`

func TestParseDefaults(t *testing.T) {
	p, err := Parse([]byte("options: {start: 2024-01-01, end: 2024-01-02}"))
	require.NoError(t, err)
	o := p.Options
	assert.Equal(t, "CMS", o.FlowUnits)
	assert.Equal(t, "DYNWAVE", o.RouteModel)
	assert.Equal(t, types.DefaultReportStep, o.ReportStep)
	assert.Equal(t, types.DefaultCourant, *o.CourantFactor)
	assert.Equal(t, types.DefaultMaxStats, *o.MaxStats)
	assert.Equal(t, types.DefaultOmega, o.Omega)

	s, err := p.Settings()
	require.NoError(t, err)
	assert.Equal(t, types.DynamicWave, s.RouteModel)
	assert.Equal(t, s.Start, s.ReportStart)
	assert.Equal(t, 86400.0, s.Duration())
}

func TestExplicitZeroKept(t *testing.T) {
	p, err := Parse([]byte("options: {start: 2024-01-01, end: 2024-01-02, courant_factor: 0, max_stats: 0}"))
	require.NoError(t, err)
	s, err := p.Settings()
	require.NoError(t, err)
	assert.Zero(t, s.CourantFactor)
	assert.Zero(t, s.MaxStats)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o644))
	p, err := Load(file)
	require.NoError(t, err)
	s, err := p.Settings()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "in.txt"), s.InflowsFile)
	assert.Equal(t, 10*time.Minute, s.ReportStep)
	assert.Equal(t, types.LPS, s.FlowUnits)

	net, err := p.Build(s)
	require.NoError(t, err)
	require.Len(t, net.Nodes, 3)
	require.Len(t, net.Links, 2)
	assert.Equal(t, types.Storage, net.Nodes[1].Type)
	assert.Equal(t, types.FixedOutfall, net.Nodes[2].OutfallType)
	assert.InDelta(t, 1e-7, net.Nodes[0].EvapRate, 1e-15)
	assert.InDelta(t, 1e-6, net.Nodes[1].SeepRate, 1e-15)
	assert.Equal(t, types.Pump, net.Links[1].Type)
	assert.InDelta(t, 0.2, net.Links[1].PumpRate, 1e-12)
	assert.True(t, net.Temperature.Active)

	require.Len(t, net.Inflows, 1)
	in := net.Inflows[0]
	assert.Equal(t, types.DryWeather, in.Category)
	assert.InDelta(t, 0.05, in.Baseline, 1e-12)
	assert.Equal(t, []types.SeriesPoint{{Time: 0, Value: 0}, {Time: 3600, Value: 0.1}}, in.Series)
	assert.Equal(t, []float64{20}, in.Quality)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"node type":  "nodes: [{id: A, type: manhole}]",
		"link node":  "nodes: [{id: A}]\nlinks: [{id: L, from: A, to: B, length: 1, width: 1, height: 1}]",
		"conduit":    "nodes: [{id: A}, {id: B}]\nlinks: [{id: L, from: A, to: B, length: 1}]",
		"pollutant":  "nodes: [{id: A}]\ninflows: [{node: A, quality: {BOD: 1}}]",
		"inflow":     "inflows: [{node: Z}]",
		"conc units": "pollutants: [{id: TSS, units: PPM}]",
	}
	for name, body := range cases {
		p, err := Parse([]byte("options: {start: 2024-01-01, end: 2024-01-02}\n" + body))
		require.NoError(t, err, name)
		s, err := p.Settings()
		require.NoError(t, err, name)
		_, err = p.Build(s)
		assert.Equal(t, types.ErrInput, types.CodeOf(err), name)
	}
}

func TestValidate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := Settings{
		Start:        start,
		End:          start.Add(time.Hour),
		ReportStart:  start,
		ReportStep:   time.Minute,
		RouteStep:    30,
		MinRouteStep: 0.5,
	}
	require.NoError(t, base.Validate())

	bad := base
	bad.End = start
	assert.Equal(t, types.ErrConfig, types.CodeOf(bad.Validate()))

	bad = base
	bad.MinRouteStep = 60
	assert.Equal(t, types.ErrConfig, types.CodeOf(bad.Validate()))

	for _, set := range []func(s *Settings){
		func(s *Settings) { s.ReportStep = 0 },
		func(s *Settings) { s.ReportStep = -time.Second },
		func(s *Settings) { s.RouteStep, s.MinRouteStep = 0, 0 },
		func(s *Settings) { s.RouteStep, s.MinRouteStep = -1, -2 },
	} {
		bad = base
		set(&bad)
		assert.Equal(t, types.ErrConfig, types.CodeOf(bad.Validate()))
	}

	bad = base
	bad.CourantFactor = 3
	assert.Equal(t, types.ErrConfig, types.CodeOf(bad.Validate()))

	bad = base
	bad.InflowsFile = "route.txt"
	bad.OutflowsFile = "ROUTE.TXT"
	assert.Equal(t, types.ErrRoutingFileNames, types.CodeOf(bad.Validate()))
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-03-05T06:07:08Z", "2024-03-05 06:07:08", "03/05/2024 06:07:08"} {
		v, err := ParseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2024, 3, 5, 6, 7, 8, 0, time.UTC), v, s)
	}
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}
