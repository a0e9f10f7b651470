package dto

import "time"

// TranscriptCompletedMessage is the ETL trigger published after a turn is
// appended to a session transcript.
type TranscriptCompletedMessage struct {
	SessionKey  string    `json:"session_key"`
	CompletedAt time.Time `json:"completed_at"`
}

type EtlResult struct {
	Sessions int `json:"sessions"`
	Batches  int `json:"batches"`
	Rows     int `json:"rows"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
}

func (r *EtlResult) Add(o *EtlResult) {
	if o == nil {
		return
	}
	r.Sessions += o.Sessions
	r.Batches += o.Batches
	r.Rows += o.Rows
	r.Skipped += o.Skipped
	r.Rejected += o.Rejected
}
