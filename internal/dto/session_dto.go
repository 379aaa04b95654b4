package dto

import "time"

type UploadDocumentRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
	Text         string `json:"text" validate:"required"`
}

type UploadDocumentResponse struct {
	SessionId     string `json:"session_id"`
	DocumentName  string `json:"document_name"`
	CharCount     int    `json:"char_count"`
	Summary       string `json:"summary,omitempty"`
	SummaryStatus string `json:"summary_status"` // "ok" | "failed"
}

type AskRequest struct {
	Question string `json:"question" validate:"required"`
}

type AskResponse struct {
	SessionId     string `json:"session_id"`
	TurnIndex     int    `json:"turn_index"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Justification string `json:"justification,omitempty"`
}

type SummaryResponse struct {
	SessionId    string `json:"session_id"`
	DocumentName string `json:"document_name"`
	Summary      string `json:"summary"`
}

type ChatTurnResponse struct {
	Position      int       `json:"position"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Justification string    `json:"justification,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type HistoryResponse struct {
	SessionId    string             `json:"session_id"`
	DocumentName string             `json:"document_name"`
	Turns        []ChatTurnResponse `json:"turns"`
}

// DeriveSessionTitleMessage is the queue payload that asks the consumer to
// name a session after its first question.
type DeriveSessionTitleMessage struct {
	SessionId string `json:"session_id"`
	Question  string `json:"question"`
}

type RecentSessionResponse struct {
	SessionId    string     `json:"session_id"`
	Title        string     `json:"title"`
	DocumentName string     `json:"document_name"`
	TurnCount    int        `json:"turn_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
