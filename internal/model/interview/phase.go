package interview

// Phase is the single authoritative conversation state. Exactly one phase
// holds at a time, so combinations like "uploading while reporting" cannot
// be expressed.
type Phase string

const (
	// PhaseIdle is a fresh session with an empty exchange.
	PhaseIdle Phase = "idle"
	// PhaseUploading means a resume upload is in flight.
	PhaseUploading Phase = "uploading"
	// PhaseChatting means at least one question has been submitted.
	PhaseChatting Phase = "chatting"
	// PhaseReporting means the closing report is being fetched or shown.
	PhaseReporting Phase = "reporting"
)
