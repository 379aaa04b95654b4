package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"documind-be/internal/constant"
	"documind-be/internal/dto"
	"documind-be/internal/repository/contract"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService names sessions after their first question, off the request
// path.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	store     contract.SessionRepository
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store contract.SessionRepository,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		store:     store,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DeriveSessionTitleMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal title message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	session, err := cs.store.Get(ctx, payload.SessionId)
	if err != nil {
		log.Printf("[ERROR] Failed to get session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if session == nil {
		log.Printf("[INFO] Session %s gone before titling, skipping", payload.SessionId)
		msg.Ack() // Session reset? Ack.
		return
	}
	if session.Title != "" {
		// Titles are set once; a second first-question message is stale.
		msg.Ack()
		return
	}

	title := deriveTitle(payload.Question)
	if title == "" {
		msg.Ack()
		return
	}

	if err := cs.store.SetTitle(ctx, payload.SessionId, title); err != nil {
		if errors.Is(err, contract.ErrNotFound) {
			msg.Ack()
			return
		}
		log.Printf("[ERROR] Failed to set title for session %s: %v", payload.SessionId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Session %s titled: %q", payload.SessionId, title)
	msg.Ack()
}

// deriveTitle collapses whitespace and clamps the question to a displayable
// length on a rune boundary.
func deriveTitle(question string) string {
	title := strings.Join(strings.Fields(question), " ")
	runes := []rune(title)
	if len(runes) > constant.SessionTitleMaxRunes {
		title = strings.TrimSpace(string(runes[:constant.SessionTitleMaxRunes]))
	}
	return title
}
