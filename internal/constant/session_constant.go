package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Session lifecycle states. Answering is transient and never persisted;
	// it exists only while an ask call is in flight.
	SessionStateIdle      = "idle"
	SessionStateReady     = "ready"
	SessionStateAnswering = "answering"

	// Document size ceilings (characters) applied before embedding the text
	// into a prompt. Larger documents are clamped, not rejected.
	SummaryDocumentLimit    = 20000
	AnswerDocumentLimit     = 100000
	ChallengeDocumentLimit  = 50000
	EvaluationDocumentLimit = 50000

	// Marker appended when a document is clamped for the answer prompt.
	DocumentTruncationMarker = "\n... [document truncated] ..."

	SummaryWordLimit = 150

	// Challenge mode always produces exactly this many questions.
	QuizQuestionCount = 3

	// Documents shorter than this (after trimming) cannot support a quiz.
	MinQuizDocumentLength = 200

	SessionTitleMaxRunes = 60
	DefaultRecentLimit   = 10
	MaxRecentLimit       = 50

	// Upload responses report whether the best-effort summary landed.
	SummaryStatusOk     = "ok"
	SummaryStatusFailed = "failed"
)

const (
	EventDocumentUploaded = "DOCUMENT_UPLOADED"
	EventTurnAnswered     = "TURN_ANSWERED"
	EventQuizGenerated    = "QUIZ_GENERATED"
	EventAnswerEvaluated  = "ANSWER_EVALUATED"
	EventSessionReset     = "SESSION_RESET"
)
