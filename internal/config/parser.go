package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"abd-bench-plots/internal/logging"
	"abd-bench-plots/internal/plot/mappings"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a YAML manifest. An empty path yields Default().
func LoadManifest(filepath string) (*Manifest, error) {
	if filepath == "" {
		return Default(), nil
	}

	logger := logging.GetLogger()

	data, err := os.ReadFile(filepath)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to read manifest file")
		return nil, err
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		logger.WithField("filepath", filepath).WithError(err).Error("Failed to parse manifest file")
		return nil, err
	}
	return manifest, nil
}

func ParseManifest(data []byte) (*Manifest, error) {
	expanded := expandEnvVars(string(data))

	var manifest Manifest
	if err := yaml.Unmarshal([]byte(expanded), &manifest); err != nil {
		return nil, err
	}

	if len(manifest.Servers) == 0 {
		manifest.Servers = append([]int(nil), DefaultServers...)
	}
	if len(manifest.AllowedClients) == 0 {
		manifest.AllowedClients = append([]int(nil), DefaultAllowedClients...)
	}

	if err := ValidateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

func expandEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		envVar := strings.Trim(match, "${}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})
}

func ValidateManifest(m *Manifest) error {
	if len(m.Plots) == 0 {
		return fmt.Errorf("at least one plot must be defined")
	}

	files := make(map[string]bool)
	for i, p := range m.Plots {
		if p.Workload == "" {
			return fmt.Errorf("plot %d: workload is required", i)
		}
		if _, ok := mappings.GetPlotTypeInfo(p.Type); !ok {
			return fmt.Errorf("plot %d: unknown plot type %q", i, p.Type)
		}
		if p.File == "" {
			return fmt.Errorf("plot %d: file is required", i)
		}
		if files[p.File] {
			return fmt.Errorf("plot %d: file %s is already used", i, p.File)
		}
		files[p.File] = true

		if len(m.ServersFor(p)) == 0 {
			return fmt.Errorf("plot %d: at least one server configuration is required", i)
		}
		for _, s := range m.ServersFor(p) {
			if s <= 0 {
				return fmt.Errorf("plot %d: server count must be greater than 0, got %d", i, s)
			}
		}
	}

	return nil
}
