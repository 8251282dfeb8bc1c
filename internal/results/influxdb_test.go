package results

import (
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldRows(t *testing.T) {
	rows := []Row{
		{Servers: "3", Workload: "90%_GETs", Protocol: "abd", Clients: "20",
			Fields: map[string]interface{}{FieldThroughput: 1000.0, FieldGetMedian: int64(5000)}},
		{Servers: "3", Workload: "90%_GETs", Protocol: "Blocking", Clients: "20",
			Fields: map[string]interface{}{FieldThroughput: uint64(800), "host": "n1"}},
		{Servers: "3", Workload: "90%_GETs", Protocol: "abd", Clients: "20",
			Fields: map[string]interface{}{FieldThroughput: 1100.0}},
		{Servers: "", Workload: "90%_GETs", Protocol: "abd", Clients: "30"},
	}

	ds := FoldRows(rows)
	require.Len(t, ds, 1)

	abd := ds.Series(3, "90%_GETs", ProtocolABD)
	require.Len(t, abd, 1)
	assert.Equal(t, 1100.0, abd["20"].Value(FieldThroughput))
	assert.Equal(t, 0.0, abd["20"].Value(FieldGetMedian))

	blocking := ds.Series(3, "90%_GETs", ProtocolBlocking)
	assert.Equal(t, 800.0, blocking["20"].Value(FieldThroughput))
	_, ok := blocking["20"]["host"]
	assert.False(t, ok)
}

func TestNewInfluxSource_MissingEnv(t *testing.T) {
	t.Setenv("INFLUXDB_HOST", "")
	t.Setenv("INFLUXDB_TOKEN", "")
	t.Setenv("INFLUXDB_ORG", "")
	t.Setenv("INFLUXDB_BUCKET", "")

	_, err := NewInfluxSource(nil)
	assert.Error(t, err)
}

func TestInfluxSource_Query(t *testing.T) {
	s := &InfluxSource{bucket: "bench", measurement: DefaultMeasurement}
	q := s.query()
	assert.Contains(t, q, `from(bucket: "bench")`)
	assert.Contains(t, q, `r["_measurement"] == "abd_benchmark_results"`)
}

func TestToPoints_RoundTripsThroughFoldRows(t *testing.T) {
	ds, err := Decode(strings.NewReader(`{
		"3": {"90%_GETs": {
			"abd": {"20": {"throughput": 1000, "get_median": 5000}, "30": {}},
			"blocking": {"20": {"throughput": 800}}
		}}
	}`))
	require.NoError(t, err)

	ts := time.Unix(1700000000, 0)
	points := ToPoints(ds, DefaultMeasurement, ts)
	require.Len(t, points, 2, "empty measurements are skipped")

	line := write.PointToLineProtocol(points[0], time.Second)
	assert.True(t, strings.HasPrefix(line,
		"abd_benchmark_results,clients=20,protocol=abd,servers=3,workload=90%_GETs "), line)
	assert.Contains(t, line, "get_median=5000,throughput=1000 1700000000")

	rows := make([]Row, 0, len(points))
	for _, p := range points {
		row := Row{Fields: make(map[string]interface{})}
		for _, tag := range p.TagList() {
			switch tag.Key {
			case tagServers:
				row.Servers = tag.Value
			case tagWorkload:
				row.Workload = tag.Value
			case tagProtocol:
				row.Protocol = tag.Value
			case tagClients:
				row.Clients = tag.Value
			}
		}
		for _, f := range p.FieldList() {
			row.Fields[f.Key] = f.Value
		}
		rows = append(rows, row)
	}

	folded := FoldRows(rows)
	assert.Equal(t, 1000.0, folded.Series(3, "90%_GETs", ProtocolABD)["20"].Value(FieldThroughput))
	assert.Equal(t, 800.0, folded.Series(3, "90%_GETs", ProtocolBlocking)["20"].Value(FieldThroughput))
}
