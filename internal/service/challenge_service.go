package service

import (
	"context"
	"strings"

	"documind-be/internal/constant"
	"documind-be/internal/dto"
	"documind-be/internal/pkg/logger"
	"documind-be/internal/repository/contract"
	"documind-be/pkg/completion"
	"documind-be/pkg/events"
	pktNats "documind-be/pkg/nats"
	"documind-be/pkg/prompt"
)

type IChallengeService interface {
	GenerateQuiz(ctx context.Context, sessionId string) (*dto.GenerateQuizResponse, error)
	Evaluate(ctx context.Context, sessionId string, req *dto.EvaluateAnswerRequest) (*dto.EvaluateAnswerResponse, error)
}

// challengeService is stateless: quizzes and evaluations read the document
// but never touch the conversation history.
type challengeService struct {
	store          contract.SessionRepository
	gateway        *completion.Gateway
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewChallengeService(
	store contract.SessionRepository,
	gateway *completion.Gateway,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IChallengeService {
	return &challengeService{
		store:          store,
		gateway:        gateway,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *challengeService) GenerateQuiz(ctx context.Context, sessionId string) (*dto.GenerateQuizResponse, error) {
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.HasDocument() {
		return nil, ErrSessionNotFound
	}

	// Reject documents that cannot support a quiz before spending a
	// completion call on them.
	if len(strings.TrimSpace(session.DocumentText)) < constant.MinQuizDocumentLength {
		return nil, ErrInsufficientContent
	}

	var payload prompt.QuizPayload
	if err := s.gateway.CompleteInto(ctx, prompt.BuildQuizPrompt(session.DocumentText), &payload); err != nil {
		return nil, err
	}

	if err := s.checkQuestions(sessionId, payload.Questions); err != nil {
		return nil, err
	}

	questions := make([]dto.QuizQuestionResponse, 0, len(payload.Questions))
	for i, q := range payload.Questions {
		id := q.Id
		if id <= 0 {
			id = i + 1
		}
		questions = append(questions, dto.QuizQuestionResponse{
			Id:         id,
			Text:       q.Text,
			AnswerHint: q.AnswerHint,
		})
	}

	s.publishEvent(ctx, constant.EventQuizGenerated, map[string]interface{}{
		"session_id":     sessionId,
		"question_count": len(questions),
	})

	return &dto.GenerateQuizResponse{
		SessionId: sessionId,
		Questions: questions,
	}, nil
}

// checkQuestions enforces the content rules the shape validation leaves to
// us: exactly the expected count, no duplicates.
func (s *challengeService) checkQuestions(sessionId string, questions []prompt.QuizQuestion) error {
	if len(questions) != constant.QuizQuestionCount {
		s.logger.Warn("ChallengeService", "Model returned wrong question count", map[string]interface{}{
			"session_id": sessionId,
			"count":      len(questions),
		})
		return ErrInsufficientContent
	}

	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		key := strings.ToLower(strings.TrimSpace(q.Text))
		if seen[key] {
			s.logger.Warn("ChallengeService", "Model returned duplicate questions", map[string]interface{}{
				"session_id": sessionId,
			})
			return ErrInsufficientContent
		}
		seen[key] = true
	}

	return nil
}

// Evaluate grades a user's answer against the document. The question does not
// have to come from a stored quiz; grading is a pure function of document,
// question and answer.
func (s *challengeService) Evaluate(ctx context.Context, sessionId string, req *dto.EvaluateAnswerRequest) (*dto.EvaluateAnswerResponse, error) {
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.HasDocument() {
		return nil, ErrSessionNotFound
	}

	evalPrompt := prompt.BuildEvaluationPrompt(session.DocumentText, req.Question, req.UserAnswer)

	var payload prompt.EvaluationPayload
	if err := s.gateway.CompleteInto(ctx, evalPrompt, &payload); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, constant.EventAnswerEvaluated, map[string]interface{}{
		"session_id": sessionId,
		"is_correct": bool(payload.IsCorrect),
	})

	return &dto.EvaluateAnswerResponse{
		SessionId:     sessionId,
		IsCorrect:     bool(payload.IsCorrect),
		Feedback:      payload.Feedback,
		Justification: payload.Justification,
	}, nil
}

func (s *challengeService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewBaseEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ChallengeService", "Failed to publish "+eventType+" event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
