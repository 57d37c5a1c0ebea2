package network

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"CommonsSim/internal/entities"
)

// NodeSnapshot is the serializable form of a node.
type NodeSnapshot struct {
	ID          int64                 `yaml:"id" json:"id"`
	Kind        string                `yaml:"kind" json:"kind"`
	Participant *entities.Participant `yaml:"participant,omitempty" json:"participant,omitempty"`
	Proposal    *entities.Proposal    `yaml:"proposal,omitempty" json:"proposal,omitempty"`
}

// EdgeSnapshot is the serializable form of an edge.
type EdgeSnapshot struct {
	From       int64   `yaml:"from" json:"from"`
	To         int64   `yaml:"to" json:"to"`
	Kind       string  `yaml:"kind" json:"kind"`
	Affinity   float64 `yaml:"affinity,omitempty" json:"affinity,omitempty"`
	Tokens     float64 `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	Conviction float64 `yaml:"conviction,omitempty" json:"conviction,omitempty"`
	Weight     float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// Snapshot is a plain view of the whole network for offline analysis.
type Snapshot struct {
	Nodes []NodeSnapshot `yaml:"nodes" json:"nodes"`
	Edges []EdgeSnapshot `yaml:"edges" json:"edges"`
}

// Snapshot copies the network into its serializable form.
func (n *Network) Snapshot() Snapshot {
	var s Snapshot
	for _, node := range n.Nodes() {
		ns := NodeSnapshot{ID: node.id, Kind: node.Kind.String()}
		switch node.Kind {
		case KindParticipant:
			ns.Participant = node.Participant.Clone()
		case KindProposal:
			ns.Proposal = node.Proposal.Clone()
		}
		s.Nodes = append(s.Nodes, ns)
	}
	for _, e := range n.Edges() {
		s.Edges = append(s.Edges, EdgeSnapshot{
			From:       e.F.id,
			To:         e.T.id,
			Kind:       e.Kind.String(),
			Affinity:   e.Affinity,
			Tokens:     e.Tokens,
			Conviction: e.Conviction,
			Weight:     e.Weight,
		})
	}
	return s
}

// WriteYAML encodes the snapshot as YAML.
func (s Snapshot) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return enc.Close()
}
