package domain

// RunRecord is one entry of the run history kept under .automigrate/history.
type RunRecord struct {
	RunID     string           `json:"run_id"`
	Catalog   string           `json:"catalog"`
	Timestamp string           `json:"timestamp"`
	Status    RunStatus        `json:"status"`
	Commit    string           `json:"commit,omitempty"`
	Outcomes  []RecordedResult `json:"outcomes"`
}

// RecordedResult is the persisted form of one outcome.
type RecordedResult struct {
	FixID string      `json:"fix_id"`
	Kind  OutcomeKind `json:"kind"`
	Cause string      `json:"cause,omitempty"`
}

// RecordFromSummary flattens a finalized summary into a history record.
func RecordFromSummary(runID, timestamp, commit string, s *RunSummary) RunRecord {
	rec := RunRecord{
		RunID:     runID,
		Catalog:   s.Catalog,
		Timestamp: timestamp,
		Status:    s.Status,
		Commit:    commit,
		Outcomes:  make([]RecordedResult, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		rec.Outcomes = append(rec.Outcomes, RecordedResult{
			FixID: e.FixID,
			Kind:  e.Outcome.Kind,
			Cause: e.Outcome.Cause,
		})
	}
	return rec
}
