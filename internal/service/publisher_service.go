package service

import (
	"encoding/json"

	"ai-shopassist-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	PublishProductsObserved(msg *dto.PublishProductsObservedMessage) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

// PublishProductsObserved hands listings to the cache consumer without
// blocking the chat reply path.
func (ps *publisherService) PublishProductsObserved(msg *dto.PublishProductsObservedMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return ps.pubSub.Publish(ps.topicName, message.NewMessage(watermill.NewUUID(), payload))
}
