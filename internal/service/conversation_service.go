package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"documind-be/internal/constant"
	"documind-be/internal/dto"
	"documind-be/internal/entity"
	"documind-be/internal/pkg/logger"
	"documind-be/internal/repository/contract"
	"documind-be/pkg/completion"
	"documind-be/pkg/events"
	pktNats "documind-be/pkg/nats"
	"documind-be/pkg/prompt"

	"github.com/google/uuid"
)

type IConversationService interface {
	Upload(ctx context.Context, sessionId string, documentName string, text string) (*dto.UploadDocumentResponse, error)
	Ask(ctx context.Context, sessionId string, req *dto.AskRequest) (*dto.AskResponse, error)
	Summary(ctx context.Context, sessionId string) (*dto.SummaryResponse, error)
	History(ctx context.Context, sessionId string) (*dto.HistoryResponse, error)
	Reset(ctx context.Context, sessionId string) error
	ListRecent(ctx context.Context, limit int) ([]*dto.RecentSessionResponse, error)
}

type conversationService struct {
	store            contract.SessionRepository
	gateway          *completion.Gateway
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewConversationService(
	store contract.SessionRepository,
	gateway *completion.Gateway,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IConversationService {
	return &conversationService{
		store:            store,
		gateway:          gateway,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

// Upload replaces the session's document and resets its conversation. The
// summary is generated best-effort: a completion failure downgrades the
// response to summary_status "failed" instead of failing the upload.
func (s *conversationService) Upload(ctx context.Context, sessionId string, documentName string, text string) (*dto.UploadDocumentResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	// 1. Store the document first. From here on the upload has succeeded.
	session, err := s.store.SetDocument(ctx, sessionId, documentName, text)
	if err != nil {
		return nil, err
	}

	// 2. Summarize
	summary, summaryStatus := s.summarize(ctx, sessionId, text)

	s.publishEvent(ctx, constant.EventDocumentUploaded, map[string]interface{}{
		"session_id":    sessionId,
		"document_name": documentName,
		"char_count":    len(text),
	})

	return &dto.UploadDocumentResponse{
		SessionId:     session.Id,
		DocumentName:  session.DocumentName,
		CharCount:     len(text),
		Summary:       summary,
		SummaryStatus: summaryStatus,
	}, nil
}

func (s *conversationService) summarize(ctx context.Context, sessionId string, text string) (string, string) {
	summary, err := s.gateway.CompleteText(ctx, prompt.BuildSummaryPrompt(text))
	if err != nil {
		s.logger.Warn("ConversationService", "Summary generation failed, document stored without one", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return "", constant.SummaryStatusFailed
	}

	if err := s.store.SetSummary(ctx, sessionId, summary); err != nil {
		s.logger.Error("ConversationService", "Failed to persist summary", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return "", constant.SummaryStatusFailed
	}

	return summary, constant.SummaryStatusOk
}

// Ask answers a question from the session's document and appends the turn to
// the conversation. The append is optimistic: if the document was replaced or
// another turn landed while the model was thinking, the store rejects it with
// contract.ErrConflict and nothing is persisted.
func (s *conversationService) Ask(ctx context.Context, sessionId string, req *dto.AskRequest) (*dto.AskResponse, error) {
	// 1. Snapshot the session
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.HasDocument() {
		return nil, ErrSessionNotFound
	}

	// 2. Replay history into the prompt
	history := make([]prompt.Turn, 0, len(session.Turns))
	for _, turn := range session.Turns {
		history = append(history, prompt.Turn{
			Question: turn.Question,
			Answer:   turn.Answer,
		})
	}
	messages := prompt.BuildAnswerMessages(session.DocumentText, history, req.Question)

	// 3. Complete
	var payload prompt.AnswerPayload
	if err := s.gateway.Complete(ctx, messages, &payload); err != nil {
		return nil, err
	}

	// 4. Append against the snapshot
	turn := &entity.ChatTurn{
		Id:            uuid.New(),
		SessionId:     sessionId,
		Question:      req.Question,
		Answer:        payload.Answer,
		Justification: payload.Justification,
		CreatedAt:     time.Now(),
	}
	if err := s.store.AppendTurn(ctx, sessionId, session.DocGeneration, len(session.Turns), turn); err != nil {
		return nil, err
	}

	// 5. First turn names the session
	if len(session.Turns) == 0 && session.Title == "" {
		s.requestTitle(ctx, sessionId, req.Question)
	}

	s.publishEvent(ctx, constant.EventTurnAnswered, map[string]interface{}{
		"session_id": sessionId,
		"turn_index": len(session.Turns),
	})

	return &dto.AskResponse{
		SessionId:     sessionId,
		TurnIndex:     len(session.Turns),
		Question:      req.Question,
		Answer:        payload.Answer,
		Justification: payload.Justification,
	}, nil
}

func (s *conversationService) requestTitle(ctx context.Context, sessionId string, question string) {
	msgJson, err := json.Marshal(dto.DeriveSessionTitleMessage{
		SessionId: sessionId,
		Question:  question,
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		s.logger.Warn("ConversationService", "Failed to queue title derivation", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// Summary returns the stored summary, regenerating it when the upload-time
// attempt failed.
func (s *conversationService) Summary(ctx context.Context, sessionId string) (*dto.SummaryResponse, error) {
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.HasDocument() {
		return nil, ErrSessionNotFound
	}

	if session.Summary != "" {
		return &dto.SummaryResponse{
			SessionId:    sessionId,
			DocumentName: session.DocumentName,
			Summary:      session.Summary,
		}, nil
	}

	summary, err := s.gateway.CompleteText(ctx, prompt.BuildSummaryPrompt(session.DocumentText))
	if err != nil {
		return nil, err
	}

	if err := s.store.SetSummary(ctx, sessionId, summary); err != nil {
		s.logger.Error("ConversationService", "Failed to persist regenerated summary", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}

	return &dto.SummaryResponse{
		SessionId:    sessionId,
		DocumentName: session.DocumentName,
		Summary:      summary,
	}, nil
}

func (s *conversationService) History(ctx context.Context, sessionId string) (*dto.HistoryResponse, error) {
	session, err := s.store.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.HasDocument() {
		return nil, ErrSessionNotFound
	}

	turns := make([]dto.ChatTurnResponse, 0, len(session.Turns))
	for _, turn := range session.Turns {
		turns = append(turns, dto.ChatTurnResponse{
			Position:      turn.Position,
			Question:      turn.Question,
			Answer:        turn.Answer,
			Justification: turn.Justification,
			CreatedAt:     turn.CreatedAt,
		})
	}

	return &dto.HistoryResponse{
		SessionId:    sessionId,
		DocumentName: session.DocumentName,
		Turns:        turns,
	}, nil
}

// Reset discards the session entirely. Resetting an unknown session is a
// no-op, not an error.
func (s *conversationService) Reset(ctx context.Context, sessionId string) error {
	if err := s.store.Clear(ctx, sessionId); err != nil {
		return err
	}

	s.publishEvent(ctx, constant.EventSessionReset, map[string]interface{}{
		"session_id": sessionId,
	})

	return nil
}

func (s *conversationService) ListRecent(ctx context.Context, limit int) ([]*dto.RecentSessionResponse, error) {
	if limit <= 0 {
		limit = constant.DefaultRecentLimit
	}
	if limit > constant.MaxRecentLimit {
		limit = constant.MaxRecentLimit
	}

	sessions, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RecentSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		res = append(res, &dto.RecentSessionResponse{
			SessionId:    session.Id,
			Title:        session.Title,
			DocumentName: session.DocumentName,
			TurnCount:    session.TurnCount,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
		})
	}

	return res, nil
}

func (s *conversationService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.NewBaseEvent(eventType, data)
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ConversationService", "Failed to publish "+eventType+" event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
