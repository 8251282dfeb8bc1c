package results

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/sirupsen/logrus"
)

// DefaultMeasurement is the InfluxDB measurement the benchmark driver writes.
const DefaultMeasurement = "abd_benchmark_results"

// Tags identifying one row of the results measurement.
const (
	tagServers  = "servers"
	tagWorkload = "workload"
	tagProtocol = "protocol"
	tagClients  = "clients"
)

var measurementFields = []string{
	FieldThroughput,
	FieldGetMedian,
	FieldGetP95,
	FieldPutMedian,
	FieldPutP95,
}

// Row is one pivoted record of the results measurement.
type Row struct {
	Servers  string
	Workload string
	Protocol string
	Clients  string
	Fields   map[string]interface{}
}

// InfluxSource assembles a Dataset from an InfluxDB bucket.
type InfluxSource struct {
	client      influxdb2.Client
	queryAPI    api.QueryAPI
	writeAPI    api.WriteAPIBlocking
	bucket      string
	org         string
	measurement string
	logger      *logrus.Logger
}

func NewInfluxSource(logger *logrus.Logger) (*InfluxSource, error) {
	host := os.Getenv("INFLUXDB_HOST")
	token := os.Getenv("INFLUXDB_TOKEN")
	org := os.Getenv("INFLUXDB_ORG")
	bucket := os.Getenv("INFLUXDB_BUCKET")

	if host == "" || token == "" || org == "" || bucket == "" {
		return nil, fmt.Errorf("missing required environment variables for InfluxDB connection")
	}

	measurement := os.Getenv("INFLUXDB_MEASUREMENT")
	if measurement == "" {
		measurement = DefaultMeasurement
	}

	client := influxdb2.NewClient(host, token)

	return &InfluxSource{
		client:      client,
		queryAPI:    client.QueryAPI(org),
		writeAPI:    client.WriteAPIBlocking(org, bucket),
		bucket:      bucket,
		org:         org,
		measurement: measurement,
		logger:      logger,
	}, nil
}

func (s *InfluxSource) Close() {
	s.client.Close()
}

// Ping fails unless the server reports a passing health check.
func (s *InfluxSource) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach InfluxDB: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("InfluxDB health check failed: %s %s", health.Status, msg)
	}
	return nil
}

// Write stores every measurement of ds, stamped with ts.
func (s *InfluxSource) Write(ctx context.Context, ds Dataset, ts time.Time) (int, error) {
	points := ToPoints(ds, s.measurement, ts)
	if len(points) == 0 {
		return 0, nil
	}

	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return 0, fmt.Errorf("failed to write data points: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"bucket":      s.bucket,
		"measurement": s.measurement,
		"points":      len(points),
	}).Info("Results written to InfluxDB")
	return len(points), nil
}

func (s *InfluxSource) Load(ctx context.Context) (Dataset, error) {
	s.logger.WithFields(logrus.Fields{
		"bucket":      s.bucket,
		"measurement": s.measurement,
	}).Debug("Querying benchmark results")

	result, err := s.queryAPI.Query(ctx, s.query())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	var rows []Row
	for result.Next() {
		record := result.Record()

		row := Row{Fields: make(map[string]interface{})}
		row.Servers, _ = record.ValueByKey(tagServers).(string)
		row.Workload, _ = record.ValueByKey(tagWorkload).(string)
		row.Protocol, _ = record.ValueByKey(tagProtocol).(string)
		row.Clients, _ = record.ValueByKey(tagClients).(string)

		for _, field := range measurementFields {
			if val := record.ValueByKey(field); val != nil {
				row.Fields[field] = val
			}
		}

		rows = append(rows, row)
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("query parsing failed: %w", result.Err())
	}

	ds := FoldRows(rows)
	s.logger.WithFields(logrus.Fields{
		"rows":    len(rows),
		"servers": len(ds),
	}).Debug("Query completed")
	return ds, nil
}

func (s *InfluxSource) query() string {
	return fmt.Sprintf(`
		from(bucket: "%s")
		|> range(start: 0)
		|> filter(fn: (r) => r["_measurement"] == "%s")
		|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
		|> sort(columns: ["_time"])
	`, s.bucket, s.measurement)
}

// FoldRows nests rows into the same shape as the JSON results file. Rows
// missing any identifying tag are dropped; later rows overwrite earlier ones.
func FoldRows(rows []Row) Dataset {
	ds := make(Dataset)
	for _, row := range rows {
		servers := strings.TrimSpace(row.Servers)
		clients := strings.TrimSpace(row.Clients)
		if servers == "" || row.Workload == "" || row.Protocol == "" || clients == "" {
			continue
		}

		sb, ok := ds[servers]
		if !ok {
			sb = make(ServerBucket)
			ds[servers] = sb
		}
		wb, ok := sb[row.Workload]
		if !ok {
			wb = make(WorkloadBucket)
			sb[row.Workload] = wb
		}
		protocol := strings.ToLower(row.Protocol)
		ps, ok := wb[protocol]
		if !ok {
			ps = make(ProtocolSeries)
			wb[protocol] = ps
		}

		m := make(Measurement, len(row.Fields))
		for field, val := range row.Fields {
			if f, ok := toFloat64(val); ok {
				m[field] = f
			}
		}
		ps[clients] = m
	}
	return ds
}

// ToPoints flattens ds into one point per client count, the inverse of
// FoldRows. Measurements without numeric fields are skipped.
func ToPoints(ds Dataset, measurement string, ts time.Time) []*write.Point {
	var points []*write.Point
	for _, e := range ds.Coverage() {
		ps := ds[e.Servers][e.Workload][e.Protocol]
		for _, clients := range e.Clients {
			m := ps[clients]
			if len(m) == 0 {
				continue
			}

			fields := make(map[string]interface{}, len(m))
			for field, v := range m {
				fields[field] = v
			}

			points = append(points, influxdb2.NewPoint(measurement,
				map[string]string{
					tagServers:  e.Servers,
					tagWorkload: e.Workload,
					tagProtocol: e.Protocol,
					tagClients:  clients,
				},
				fields,
				ts))
		}
	}
	return points
}

func toFloat64(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
