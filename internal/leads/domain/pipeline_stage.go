package domain

const (
	PipelineStageNew       = "new"
	PipelineStageContacted = "contacted"
	PipelineStageQualified = "qualified"
	PipelineStageProposal  = "proposal"
	PipelineStageWon       = "won"
	PipelineStageLost      = "lost"
)

var knownPipelineStages = map[string]struct{}{
	PipelineStageNew:       {},
	PipelineStageContacted: {},
	PipelineStageQualified: {},
	PipelineStageProposal:  {},
	PipelineStageWon:       {},
	PipelineStageLost:      {},
}

func IsKnownPipelineStage(stage string) bool {
	_, ok := knownPipelineStages[stage]
	return ok
}
