package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/entity"
	"ai-shopassist-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the products-observed topic and refreshes the
// local product cache, keeping catalog writes off the request path.
type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
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
	var payload dto.PublishProductsObservedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal products-observed message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if len(payload.Products) == 0 {
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	now := time.Now()
	for _, p := range payload.Products {
		if p.ItemID == "" || p.Title == "" {
			continue
		}
		product := &entity.Product{
			Id:            uuid.New(),
			ItemID:        p.ItemID,
			Title:         p.Title,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			ImageURL:      p.ImageURL,
			DetailURL:     p.DetailURL,
			Category:      p.Category,
			ShopName:      p.ShopName,
			Rating:        p.Rating,
			Sales:         p.Sales,
			CreatedAt:     now,
		}
		if err := uow.ProductRepository().Upsert(ctx, product); err != nil {
			log.Printf("[ERROR] Failed to upsert product %s: %v", p.ItemID, err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit product cache update: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Cached %d products from %s", len(payload.Products), payload.Source)
	msg.Ack()
}
