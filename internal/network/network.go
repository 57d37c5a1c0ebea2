// Package network holds the participant/proposal graph the simulation runs
// on. Participants hold support edges to every proposal, influence edges to
// some other participants, and proposals hold conflict edges to some other
// proposals.
//
// All iteration is ordered by node ID so a seeded run is reproducible.
package network

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"CommonsSim/internal/calculator"
	"CommonsSim/internal/entities"
)

var (
	// ErrNoSupportEdges is returned by queries over an empty support edge set.
	ErrNoSupportEdges = errors.New("network has no support edges")
	// ErrNoParticipants is returned by queries over an empty participant set.
	ErrNoParticipants = errors.New("network has no participants")
)

// Kind tags what a node holds.
type Kind int

const (
	KindParticipant Kind = iota + 1
	KindProposal
)

func (k Kind) String() string {
	switch k {
	case KindParticipant:
		return "participant"
	case KindProposal:
		return "proposal"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node holds exactly one of Participant or Proposal, as given by Kind.
type Node struct {
	id          int64
	Kind        Kind
	Participant *entities.Participant
	Proposal    *entities.Proposal
}

// ID implements graph.Node.
func (n *Node) ID() int64 { return n.id }

// EdgeKind tags the relationship an edge carries.
type EdgeKind int

const (
	EdgeSupport EdgeKind = iota + 1
	EdgeInfluence
	EdgeConflict
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeSupport:
		return "support"
	case EdgeInfluence:
		return "influence"
	case EdgeConflict:
		return "conflict"
	}
	return fmt.Sprintf("edge(%d)", int(k))
}

// Edge is a typed directed edge. Support edges use Affinity, Tokens and
// Conviction; influence and conflict edges use Weight.
type Edge struct {
	F, T *Node
	Kind EdgeKind

	Affinity   float64
	Tokens     float64
	Conviction float64

	Weight float64
}

// From implements graph.Edge.
func (e *Edge) From() graph.Node { return e.F }

// To implements graph.Edge.
func (e *Edge) To() graph.Node { return e.T }

// ReversedEdge implements graph.Edge.
func (e *Edge) ReversedEdge() graph.Edge {
	r := *e
	r.F, r.T = e.T, e.F
	return &r
}

// Network is the mutable simulation graph. It is not safe for concurrent use.
type Network struct {
	g      *simple.DirectedGraph
	nextID int64
}

// New returns an empty network.
func New() *Network {
	return &Network{g: simple.NewDirectedGraph()}
}

// Len returns the number of nodes.
func (n *Network) Len() int { return n.g.Nodes().Len() }

func (n *Network) addNode(node *Node) int64 {
	node.id = n.nextID
	n.nextID++
	n.g.AddNode(node)
	return node.id
}

// AddParticipantNode inserts a participant without any edges.
func (n *Network) AddParticipantNode(p *entities.Participant) int64 {
	return n.addNode(&Node{Kind: KindParticipant, Participant: p})
}

// AddProposalNode inserts a proposal without any edges.
func (n *Network) AddProposalNode(p *entities.Proposal) int64 {
	return n.addNode(&Node{Kind: KindProposal, Proposal: p})
}

// Node returns the node with the given ID.
func (n *Network) Node(id int64) (*Node, bool) {
	gn := n.g.Node(id)
	if gn == nil {
		return nil, false
	}
	return gn.(*Node), true
}

// Participant returns the participant at id, or nil.
func (n *Network) Participant(id int64) *entities.Participant {
	node, ok := n.Node(id)
	if !ok || node.Kind != KindParticipant {
		return nil
	}
	return node.Participant
}

// Proposal returns the proposal at id, or nil.
func (n *Network) Proposal(id int64) *entities.Proposal {
	node, ok := n.Node(id)
	if !ok || node.Kind != KindProposal {
		return nil
	}
	return node.Proposal
}

// Nodes returns every node ordered by ID.
func (n *Network) Nodes() []*Node {
	gns := graph.NodesOf(n.g.Nodes())
	nodes := make([]*Node, len(gns))
	for i, gn := range gns {
		nodes[i] = gn.(*Node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes
}

// Participants returns participant nodes ordered by ID.
func (n *Network) Participants() []*Node {
	var out []*Node
	for _, node := range n.Nodes() {
		if node.Kind == KindParticipant {
			out = append(out, node)
		}
	}
	return out
}

// Proposals returns proposal nodes ordered by ID, optionally restricted to
// the given statuses.
func (n *Network) Proposals(statuses ...entities.Status) []*Node {
	var out []*Node
	for _, node := range n.Nodes() {
		if node.Kind != KindProposal {
			continue
		}
		if len(statuses) == 0 || hasStatus(node.Proposal.Status, statuses) {
			out = append(out, node)
		}
	}
	return out
}

func hasStatus(s entities.Status, statuses []entities.Status) bool {
	for _, want := range statuses {
		if s == want {
			return true
		}
	}
	return false
}

// Edge returns the edge from u to v, if any.
func (n *Network) Edge(u, v int64) (*Edge, bool) {
	e := n.g.Edge(u, v)
	if e == nil {
		return nil, false
	}
	return e.(*Edge), true
}

// HasEdge reports whether an edge from u to v exists.
func (n *Network) HasEdge(u, v int64) bool {
	return n.g.HasEdgeFromTo(u, v)
}

func (n *Network) setEdge(e *Edge) {
	n.g.SetEdge(e)
}

// Edges returns every edge of the given kinds, ordered by (from, to). With no
// kinds given it returns all edges.
func (n *Network) Edges(kinds ...EdgeKind) []*Edge {
	var out []*Edge
	for _, ge := range graph.EdgesOf(n.g.Edges()) {
		e := ge.(*Edge)
		if len(kinds) == 0 || hasKind(e.Kind, kinds) {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

func hasKind(k EdgeKind, kinds []EdgeKind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func sortEdges(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].F.id != edges[j].F.id {
			return edges[i].F.id < edges[j].F.id
		}
		return edges[i].T.id < edges[j].T.id
	})
}

// SupportEdges returns every participant->proposal edge.
func (n *Network) SupportEdges() []*Edge { return n.Edges(EdgeSupport) }

// InfluenceEdges returns every participant->participant edge.
func (n *Network) InfluenceEdges() []*Edge { return n.Edges(EdgeInfluence) }

// ConflictEdges returns every proposal->proposal edge.
func (n *Network) ConflictEdges() []*Edge { return n.Edges(EdgeConflict) }

// SupportEdgesOf returns the participant's outgoing support edges.
func (n *Network) SupportEdgesOf(participant int64) []*Edge {
	var out []*Edge
	for _, gn := range graph.NodesOf(n.g.From(participant)) {
		if e, ok := n.Edge(participant, gn.ID()); ok && e.Kind == EdgeSupport {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// SupportEdgesTo returns the proposal's incoming support edges.
func (n *Network) SupportEdgesTo(proposal int64) []*Edge {
	var out []*Edge
	for _, gn := range graph.NodesOf(n.g.To(proposal)) {
		if e, ok := n.Edge(gn.ID(), proposal); ok && e.Kind == EdgeSupport {
			out = append(out, e)
		}
	}
	sortEdges(out)
	return out
}

// TotalFundsRequested sums the requests of candidate proposals.
func (n *Network) TotalFundsRequested() float64 {
	total := 0.0
	for _, node := range n.Proposals(entities.StatusCandidate) {
		total += node.Proposal.FundsRequested
	}
	return total
}

// MedianAffinity is the median affinity over all support edges.
func (n *Network) MedianAffinity() (float64, error) {
	edges := n.SupportEdges()
	if len(edges) == 0 {
		return 0, ErrNoSupportEdges
	}
	affinities := make([]float64, len(edges))
	for i, e := range edges {
		affinities[i] = e.Affinity
	}
	return calculator.Median(affinities)
}

// TotalConviction sums conviction over the proposal's incoming support edges.
func (n *Network) TotalConviction(proposal int64) (float64, error) {
	if n.Proposal(proposal) == nil {
		return 0, fmt.Errorf("node %d does not hold a proposal", proposal)
	}
	total := 0.0
	for _, e := range n.SupportEdgesTo(proposal) {
		total += e.Conviction
	}
	return total, nil
}

// TotalStaked sums tokens over the proposal's incoming support edges.
func (n *Network) TotalStaked(proposal int64) float64 {
	total := 0.0
	for _, e := range n.SupportEdgesTo(proposal) {
		total += e.Tokens
	}
	return total
}

// TotalAffinity sums affinity over all support edges.
func (n *Network) TotalAffinity() float64 {
	total := 0.0
	for _, e := range n.SupportEdges() {
		total += e.Affinity
	}
	return total
}

// AvgSentiment is the mean participant sentiment.
func (n *Network) AvgSentiment() (float64, error) {
	participants := n.Participants()
	if len(participants) == 0 {
		return 0, ErrNoParticipants
	}
	total := 0.0
	for _, node := range participants {
		total += node.Participant.Sentiment
	}
	return total / float64(len(participants)), nil
}

// ProposalConvictions lists the conviction of every support edge.
func (n *Network) ProposalConvictions() []float64 {
	edges := n.SupportEdges()
	out := make([]float64, len(edges))
	for i, e := range edges {
		out[i] = e.Conviction
	}
	return out
}

// StatusCounts counts proposals per status.
func (n *Network) StatusCounts() map[entities.Status]int {
	counts := map[entities.Status]int{}
	for _, node := range n.Proposals() {
		counts[node.Proposal.Status]++
	}
	return counts
}

// Clone returns a deep copy: entities, edges and the ID counter.
func (n *Network) Clone() *Network {
	c := &Network{g: simple.NewDirectedGraph(), nextID: n.nextID}
	copies := map[int64]*Node{}
	for _, node := range n.Nodes() {
		cp := &Node{id: node.id, Kind: node.Kind}
		switch node.Kind {
		case KindParticipant:
			cp.Participant = node.Participant.Clone()
		case KindProposal:
			cp.Proposal = node.Proposal.Clone()
		}
		copies[node.id] = cp
		c.g.AddNode(cp)
	}
	for _, e := range n.Edges() {
		ce := *e
		ce.F, ce.T = copies[e.F.id], copies[e.T.id]
		c.g.SetEdge(&ce)
	}
	return c
}
