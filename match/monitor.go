package match

import (
	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
)

// MatchMonitor provides hooks to observe the resolution pipeline.
// Implement this interface to track intermediate steps during matching.
type MatchMonitor interface {
	Start(query *core.Query)
	CacheHit(result *core.MatchResult)
	AfterNormalize(normText string)
	AfterEncoding(vector []float32)
	EncodingDegraded(err error)
	AfterShortlist(hits []index.Hit)
	AfterRank(candidates []core.Candidate)
	FallbackInvoked(candidates []ai.OracleCandidate)
	FallbackDecision(decision ai.OracleDecision, err error)
	Finish(result *core.MatchResult)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Query)                                {}
func (n *noopMonitor) CacheHit(_ *core.MatchResult)                       {}
func (n *noopMonitor) AfterNormalize(_ string)                            {}
func (n *noopMonitor) AfterEncoding(_ []float32)                          {}
func (n *noopMonitor) EncodingDegraded(_ error)                           {}
func (n *noopMonitor) AfterShortlist(_ []index.Hit)                       {}
func (n *noopMonitor) AfterRank(_ []core.Candidate)                       {}
func (n *noopMonitor) FallbackInvoked(_ []ai.OracleCandidate)             {}
func (n *noopMonitor) FallbackDecision(_ ai.OracleDecision, _ error)      {}
func (n *noopMonitor) Finish(_ *core.MatchResult)                         {}
