package config

import (
	"abd-bench-plots/internal/plot/mappings"
)

// Manifest lists the charts one run renders. Servers and AllowedClients are
// the defaults for every plot that does not set its own.
type Manifest struct {
	AllowedClients []int      `yaml:"allowed_clients"`
	Servers        []int      `yaml:"servers"`
	Plots          []PlotSpec `yaml:"plots"`
}

type PlotSpec struct {
	Workload       string            `yaml:"workload"`
	Type           mappings.PlotType `yaml:"type"`
	Title          string            `yaml:"title"`
	File           string            `yaml:"file"`
	Servers        []int             `yaml:"servers,omitempty"`
	AllowedClients []int             `yaml:"allowed_clients,omitempty"`
}

func (m *Manifest) ServersFor(p PlotSpec) []int {
	if len(p.Servers) > 0 {
		return p.Servers
	}
	return m.Servers
}

func (m *Manifest) ClientsFor(p PlotSpec) []int {
	if len(p.AllowedClients) > 0 {
		return p.AllowedClients
	}
	return m.AllowedClients
}
