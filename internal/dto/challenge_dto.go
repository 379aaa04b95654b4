package dto

type QuizQuestionResponse struct {
	Id         int    `json:"id"`
	Text       string `json:"text"`
	AnswerHint string `json:"answer_hint,omitempty"`
}

type GenerateQuizResponse struct {
	SessionId string                 `json:"session_id"`
	Questions []QuizQuestionResponse `json:"questions"`
}

type EvaluateAnswerRequest struct {
	Question   string `json:"question" validate:"required"`
	UserAnswer string `json:"user_answer" validate:"required"`
}

type EvaluateAnswerResponse struct {
	SessionId     string `json:"session_id"`
	IsCorrect     bool   `json:"is_correct"`
	Feedback      string `json:"feedback"`
	Justification string `json:"justification,omitempty"`
}
