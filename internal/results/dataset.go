// Package results holds the benchmark results dataset rendered by the plot
// commands and the loaders that produce it.
//
// The dataset is nested four levels deep:
//
//	servers -> workload -> protocol -> clients -> measurement
//
// Every lookup tolerates absent keys and resolves to an empty container, so a
// sparse dataset yields empty series rather than errors.
package results

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Measurement field names.
const (
	FieldThroughput = "throughput"
	FieldGetMedian  = "get_median"
	FieldGetP95     = "get_p95"
	FieldPutMedian  = "put_median"
	FieldPutP95     = "put_p95"
)

type Protocol string

const (
	ProtocolABD      Protocol = "abd"
	ProtocolBlocking Protocol = "blocking"
)

// Protocols lists the compared protocols in drawing order.
var Protocols = []Protocol{ProtocolABD, ProtocolBlocking}

// Measurement is one benchmark data point. Latencies are in microseconds.
type Measurement map[string]float64

// Value returns the field or 0 when it is absent.
func (m Measurement) Value(field string) float64 {
	return m[field]
}

func (m Measurement) Lookup(field string) (float64, bool) {
	v, ok := m[field]
	return v, ok
}

// UnmarshalJSON keeps numeric fields and drops everything else, null
// included, so one odd value does not fail the whole document.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Measurement, len(raw))
	for k, v := range raw {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			continue
		}
		out[k] = f
	}
	*m = out
	return nil
}

type ProtocolSeries map[string]Measurement

// UnmarshalJSON drops client entries that are not objects instead of failing
// the document.
func (ps *ProtocolSeries) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ProtocolSeries, len(raw))
	for clients, v := range raw {
		var m Measurement
		if err := json.Unmarshal(v, &m); err != nil {
			continue
		}
		out[clients] = m
	}
	*ps = out
	return nil
}

type WorkloadBucket map[string]ProtocolSeries

type ServerBucket map[string]WorkloadBucket

// Dataset maps the replica count (as a decimal string) to its results.
type Dataset map[string]ServerBucket

func (d Dataset) Server(servers int) ServerBucket {
	if b, ok := d[strconv.Itoa(servers)]; ok && b != nil {
		return b
	}
	return ServerBucket{}
}

func (s ServerBucket) Workload(key string) WorkloadBucket {
	if b, ok := s[key]; ok && b != nil {
		return b
	}
	return WorkloadBucket{}
}

func (w WorkloadBucket) Protocol(p Protocol) ProtocolSeries {
	if s, ok := w[string(p)]; ok && s != nil {
		return s
	}
	return ProtocolSeries{}
}

// Series resolves all three levels at once.
func (d Dataset) Series(servers int, workload string, p Protocol) ProtocolSeries {
	return d.Server(servers).Workload(workload).Protocol(p)
}

// Point is a measurement paired with its parsed client count.
type Point struct {
	Clients int
	Record  Measurement
}

// Points parses the client-count keys, keeps the ones present in allowed and
// returns them in ascending client order. Keys that are not integers are
// skipped. An empty allow-list admits nothing.
func (ps ProtocolSeries) Points(allowed []int) []Point {
	allow := make(map[int]bool, len(allowed))
	for _, c := range allowed {
		allow[c] = true
	}

	byClients := make(map[int]string, len(ps))
	for key := range ps {
		c, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || !allow[c] {
			continue
		}
		// "20" wins over " 20" or "020" when both are present.
		if prev, ok := byClients[c]; ok {
			canonical := strconv.Itoa(c)
			if prev == canonical || (key != canonical && prev < key) {
				continue
			}
		}
		byClients[c] = key
	}

	points := make([]Point, 0, len(byClients))
	for c, key := range byClients {
		points = append(points, Point{Clients: c, Record: ps[key]})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Clients < points[j].Clients
	})
	return points
}

// Clients is Points without the records.
func (ps ProtocolSeries) Clients(allowed []int) []int {
	points := ps.Points(allowed)
	clients := make([]int, len(points))
	for i, p := range points {
		clients[i] = p.Clients
	}
	return clients
}

// CoverageEntry summarises one protocol series of the dataset.
type CoverageEntry struct {
	Servers  string
	Workload string
	Protocol string
	Clients  []string
}

// Coverage lists every series in the dataset in a stable order.
func (d Dataset) Coverage() []CoverageEntry {
	var entries []CoverageEntry
	for servers, sb := range d {
		for workload, wb := range sb {
			for protocol, ps := range wb {
				clients := make([]string, 0, len(ps))
				for c := range ps {
					clients = append(clients, c)
				}
				sort.Slice(clients, func(i, j int) bool {
					return lessNumeric(clients[i], clients[j])
				})
				entries = append(entries, CoverageEntry{
					Servers:  servers,
					Workload: workload,
					Protocol: protocol,
					Clients:  clients,
				})
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Servers != b.Servers {
			return lessNumeric(a.Servers, b.Servers)
		}
		if a.Workload != b.Workload {
			return a.Workload < b.Workload
		}
		return a.Protocol < b.Protocol
	})
	return entries
}

func lessNumeric(a, b string) bool {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return x < y
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return a < b
	}
}
