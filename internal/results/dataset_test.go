package results

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "3": {
    "90%_GETs": {
      "abd": {
        "40": {"throughput": 1500, "get_median": 5000, "get_p95": 12000},
        "20": {"throughput": 1000},
        "10": {"throughput": 400},
        "x":  {"throughput": 9}
      },
      "blocking": {"20": {"throughput": 800, "note": "warm"}}
    }
  }
}`

var allowed = []int{20, 30, 40, 50, 60, 70, 80}

func mustDecode(t *testing.T, doc string) Dataset {
	t.Helper()
	ds, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return ds
}

func TestSeries_MissingLevelsResolveEmpty(t *testing.T) {
	ds := mustDecode(t, sampleJSON)

	assert.Empty(t, ds.Series(1, "90%_GETs", ProtocolABD))
	assert.Empty(t, ds.Series(3, "90%_PUTs", ProtocolABD))
	assert.Empty(t, ds.Series(3, "90%_GETs", Protocol("paxos")))
	assert.NotNil(t, ds.Series(1, "90%_GETs", ProtocolABD))

	var nilDS Dataset
	assert.Empty(t, nilDS.Series(3, "90%_GETs", ProtocolBlocking).Points(allowed))
}

func TestPoints_FilterAndSort(t *testing.T) {
	ds := mustDecode(t, sampleJSON)

	points := ds.Series(3, "90%_GETs", ProtocolABD).Points(allowed)
	require.Len(t, points, 2)
	assert.Equal(t, 20, points[0].Clients)
	assert.Equal(t, 40, points[1].Clients)
	assert.Equal(t, 1500.0, points[1].Record.Value(FieldThroughput))

	assert.Equal(t, []int{20, 40}, ds.Series(3, "90%_GETs", ProtocolABD).Clients(allowed))
	assert.Equal(t, []int{20}, ds.Series(3, "90%_GETs", ProtocolBlocking).Clients(allowed))
}

func TestPoints_EmptyAllowListAdmitsNothing(t *testing.T) {
	ds := mustDecode(t, sampleJSON)
	assert.Empty(t, ds.Series(3, "90%_GETs", ProtocolABD).Clients(nil))
}

func TestPoints_PrefersCanonicalKey(t *testing.T) {
	ps := ProtocolSeries{
		"020": {FieldThroughput: 1},
		"20":  {FieldThroughput: 2},
		" 20": {FieldThroughput: 3},
	}
	points := ps.Points([]int{20})
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, points[0].Record.Value(FieldThroughput))
}

func TestMeasurement_MissingFieldsReadZero(t *testing.T) {
	ds := mustDecode(t, sampleJSON)
	m := ds.Series(3, "90%_GETs", ProtocolABD)["20"]

	assert.Equal(t, 0.0, m.Value(FieldGetMedian))
	_, ok := m.Lookup(FieldGetMedian)
	assert.False(t, ok)

	var absent Measurement
	assert.Equal(t, 0.0, absent.Value(FieldThroughput))
}

func TestMeasurement_NonNumericFieldsDropped(t *testing.T) {
	ds := mustDecode(t, sampleJSON)
	m := ds.Series(3, "90%_GETs", ProtocolBlocking)["20"]

	assert.Equal(t, 800.0, m.Value(FieldThroughput))
	_, ok := m["note"]
	assert.False(t, ok)
}

func TestMeasurement_NullFieldIsMissing(t *testing.T) {
	ds := mustDecode(t, `{"1": {"90%_GETs": {"abd": {"20": {"get_median": 1000, "get_p95": null}}}}}`)
	m := ds.Series(1, "90%_GETs", ProtocolABD)["20"]

	assert.Equal(t, 1000.0, m.Value(FieldGetMedian))
	_, ok := m.Lookup(FieldGetP95)
	assert.False(t, ok)
}

func TestDecode_NonObjectRecordDropped(t *testing.T) {
	ds := mustDecode(t, `{"1": {"w": {"abd": {"20": "n/a", "30": {"throughput": 1}, "40": [1, 2]}}}}`)
	series := ds.Series(1, "w", ProtocolABD)

	require.Len(t, series, 1)
	assert.Equal(t, 1.0, series["30"].Value(FieldThroughput))
	assert.Equal(t, []int{30}, series.Clients([]int{20, 30, 40}))
}

func TestDecode_NullDocument(t *testing.T) {
	ds := mustDecode(t, "null")
	assert.NotNil(t, ds)
	assert.Empty(t, ds.Series(1, "90%_GETs", ProtocolABD))
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"3": [`))
	assert.Error(t, err)
}

func TestCoverage_StableOrder(t *testing.T) {
	ds := mustDecode(t, `{
		"10": {"90%_GETs": {"abd": {"20": {}}}},
		"3":  {"90%_PUTs": {"blocking": {"80": {}, "20": {}}}, "90%_GETs": {"abd": {}}}
	}`)

	entries := ds.Coverage()
	require.Len(t, entries, 3)
	assert.Equal(t, "3", entries[0].Servers)
	assert.Equal(t, "90%_GETs", entries[0].Workload)
	assert.Equal(t, "90%_PUTs", entries[1].Workload)
	assert.Equal(t, []string{"20", "80"}, entries[1].Clients)
	assert.Equal(t, "10", entries[2].Servers)
}
