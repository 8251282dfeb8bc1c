package results

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"abd-bench-plots/internal/logging"

	"github.com/sirupsen/logrus"
)

// DefaultResultsFile is read when no other path is given.
const DefaultResultsFile = "results_data.json"

// Source produces a dataset. It is called once per run.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
	Close()
}

type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	if path == "" {
		path = DefaultResultsFile
	}
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

func (s *FileSource) Close() {}

func LoadFile(path string) (Dataset, error) {
	logger := logging.GetLogger()

	f, err := os.Open(path)
	if err != nil {
		logger.WithField("filepath", path).WithError(err).Error("Failed to open results file")
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	ds, err := Decode(f)
	if err != nil {
		logger.WithField("filepath", path).WithError(err).Error("Failed to parse results file")
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"filepath": path,
		"servers":  len(ds),
	}).Debug("Loaded results dataset")
	return ds, nil
}

func Decode(r io.Reader) (Dataset, error) {
	var ds Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, err
	}
	if ds == nil {
		ds = Dataset{}
	}
	return ds, nil
}
