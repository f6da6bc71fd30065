package interactions

import "time"

// AssessmentRecord is one successful control assessment.
type AssessmentRecord struct {
	ID         string    `json:"id"`
	ControlID  string    `json:"control_id"`
	Timestamp  time.Time `json:"timestamp"`
	Assessment string    `json:"assessment"`
}

// ChatTurn is one user question and the assistant's answer.
type ChatTurn struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
}

// Snapshot is a point-in-time copy of the interaction log
type Snapshot struct {
	Assessments []AssessmentRecord `json:"assessments"`
	ChatHistory []ChatTurn         `json:"chat_history"`
}
