package enginedto

// SearchInfo is one frame of the analysis stream: the engine's thinking
// telemetry for the search in progress. Absent fields were not reported.
type SearchInfo struct {
	Depth   *int     `json:"depth,omitempty"`
	ScoreCP *int     `json:"score_cp,omitempty"`
	Nodes   *uint64  `json:"nodes,omitempty"`
	NPS     *uint64  `json:"nps,omitempty"`
	TimeMs  *int     `json:"time,omitempty"`
	PV      []string `json:"pv,omitempty"`
}
