package recorder

import "CommonsSim/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *RunRecord) error                             { return nil }
func (n *NoopRecorder) RecordTimesteps(_ string, _ []model.TimestepRecord) error { return nil }
func (n *NoopRecorder) RecordProposals(_ string, _ []ProposalRecord) error       { return nil }
func (n *NoopRecorder) Close() error                                             { return nil }
