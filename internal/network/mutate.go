package network

import (
	"fmt"

	"CommonsSim/internal/conviction"
	"CommonsSim/internal/entities"
	"CommonsSim/internal/rng"
	"CommonsSim/internal/vesting"
)

// EdgeParams tunes the random edge draws.
type EdgeParams struct {
	ConflictRate    float64
	InfluenceScale  float64
	InfluenceSigmas float64
}

// DefaultEdgeParams are the reference edge draw settings.
func DefaultEdgeParams() EdgeParams {
	return EdgeParams{ConflictRate: 0.25, InfluenceScale: 1, InfluenceSigmas: 3}
}

// Influence draws how strongly one participant sways another. Only draws
// more than sigmas deviations out create an edge; ok is false otherwise.
func Influence(r rng.Random, scale, sigmas float64) (weight float64, ok bool) {
	rv := r.Exponential(0, scale)
	if rv > scale+sigmas*(scale*scale) {
		return rv, true
	}
	return 0, false
}

// supportAffinity skews the uniform draw towards 0 and 1: most participants
// barely care about a proposal, a few care a lot.
func supportAffinity(r rng.Random) float64 {
	rv := r.Uniform()
	return 1 - 4*(1-rv)*rv
}

func (n *Network) addSupportEdge(participant, proposal *Node, r rng.Random) {
	n.setEdge(&Edge{F: participant, T: proposal, Kind: EdgeSupport, Affinity: supportAffinity(r)})
}

// SetupSupportEdges connects every participant to every proposal it is not
// yet connected to.
func (n *Network) SetupSupportEdges(r rng.Random) {
	participants := n.Participants()
	for _, prop := range n.Proposals() {
		for _, par := range participants {
			if !n.HasEdge(par.id, prop.id) {
				n.addSupportEdge(par, prop, r)
			}
		}
	}
}

func (n *Network) setupSupportEdgesFor(node *Node, r rng.Random) {
	switch node.Kind {
	case KindProposal:
		for _, par := range n.Participants() {
			n.addSupportEdge(par, node, r)
		}
	case KindParticipant:
		for _, prop := range n.Proposals() {
			n.addSupportEdge(node, prop, r)
		}
	}
}

// SetupConflictEdges gives each ordered pair of distinct proposals a
// conflict edge with probability rate.
func (n *Network) SetupConflictEdges(r rng.Random, rate float64) {
	proposals := n.Proposals()
	for _, p := range proposals {
		n.setupConflictEdgesFor(p, proposals, r, rate)
	}
}

func (n *Network) setupConflictEdgesFor(proposal *Node, proposals []*Node, r rng.Random, rate float64) {
	for _, other := range proposals {
		if other.id == proposal.id {
			continue
		}
		rv := r.Uniform()
		if rv < rate {
			n.setEdge(&Edge{F: proposal, T: other, Kind: EdgeConflict, Weight: 1 - rv})
		}
	}
}

// SetupInfluenceEdgesBulk draws influence for every ordered participant pair
// that has no edge yet.
func (n *Network) SetupInfluenceEdgesBulk(r rng.Random, scale, sigmas float64) {
	participants := n.Participants()
	for _, i := range participants {
		for _, other := range participants {
			if other.id == i.id || n.HasEdge(i.id, other.id) {
				continue
			}
			if w, ok := Influence(r, scale, sigmas); ok {
				n.setEdge(&Edge{F: i, T: other, Kind: EdgeInfluence, Weight: w})
			}
		}
	}
}

func (n *Network) setupInfluenceEdgesFor(participant *Node, r rng.Random, scale, sigmas float64) {
	for _, other := range n.Participants() {
		if other.id == participant.id {
			continue
		}
		if !n.HasEdge(other.id, participant.id) {
			if w, ok := Influence(r, scale, sigmas); ok {
				n.setEdge(&Edge{F: other, T: participant, Kind: EdgeInfluence, Weight: w})
			}
		}
		if !n.HasEdge(participant.id, other.id) {
			if w, ok := Influence(r, scale, sigmas); ok {
				n.setEdge(&Edge{F: participant, T: other, Kind: EdgeInfluence, Weight: w})
			}
		}
	}
}

// AddParticipant inserts p with influence edges to and from the existing
// participants and a support edge to every proposal.
func (n *Network) AddParticipant(p *entities.Participant, r rng.Random, ep EdgeParams) int64 {
	id := n.AddParticipantNode(p)
	node, _ := n.Node(id)
	n.setupInfluenceEdgesFor(node, r, ep.InfluenceScale, ep.InfluenceSigmas)
	n.setupSupportEdgesFor(node, r)
	return id
}

// AddProposal inserts p with a support edge from every participant and
// conflict edges to the existing proposals. The author's affinity is 1.
func (n *Network) AddProposal(p *entities.Proposal, author int64, r rng.Random, ep EdgeParams) (int64, error) {
	if n.Participant(author) == nil {
		return 0, fmt.Errorf("author %d is not a participant", author)
	}
	id := n.AddProposalNode(p)
	node, _ := n.Node(id)
	n.setupSupportEdgesFor(node, r)
	n.setupConflictEdgesFor(node, n.Proposals(), r, ep.ConflictRate)

	e, _ := n.Edge(author, id)
	e.Affinity = 1
	return id, nil
}

// RemoveParticipant deletes the participant and every incident edge. The
// proposals it authored stay.
func (n *Network) RemoveParticipant(id int64) error {
	if n.Participant(id) == nil {
		return fmt.Errorf("node %d is not a participant", id)
	}
	n.g.RemoveNode(id)
	return nil
}

// BootstrapConfig describes the initial network.
type BootstrapConfig struct {
	Proposals           int
	FundingPool         float64
	TokenSupply         float64
	MaxProposalRequest  float64
	FundsRequestedAlpha float64
	FundsRequestedMin   float64
	FundsRequestedScale float64
	Edges               EdgeParams
}

// Bootstrap builds the hatch network: one participant per token batch with
// sentiment in [0.5, 1), the initial candidate proposals, then support,
// conflict and influence edges.
func Bootstrap(batches []*vesting.TokenBatch, cfg BootstrapConfig, r rng.Random) *Network {
	n := New()
	for _, b := range batches {
		n.AddParticipantNode(entities.NewParticipant(b, 0.5+0.5*r.Uniform()))
	}
	for i := 0; i < cfg.Proposals; i++ {
		funds := r.Gamma(cfg.FundsRequestedAlpha, cfg.FundsRequestedMin, cfg.FundsRequestedScale)
		trigger := conviction.TriggerThreshold(funds, cfg.FundingPool, cfg.TokenSupply, cfg.MaxProposalRequest)
		n.AddProposalNode(entities.NewProposal(funds, trigger))
	}
	n.SetupSupportEdges(r)
	n.SetupConflictEdges(r, cfg.Edges.ConflictRate)
	n.SetupInfluenceEdgesBulk(r, cfg.Edges.InfluenceScale, cfg.Edges.InfluenceSigmas)
	return n
}
