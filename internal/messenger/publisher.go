package messenger

import (
	"encoding/json"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"go.uber.org/zap"
)

// Publisher forwards marketplace events to a message service.
type Publisher struct {
	messenger MessageService
}

func NewPublisher(messenger MessageService) *Publisher {
	return &Publisher{messenger}
}

func (p *Publisher) Listen(events *event.Manager) {
	events.AddListener(func(msg interface{}) {
		if ev, ok := msg.(entity.ListingEvent); ok {
			p.Publish(ev)
		}
	}, event.AllEvents...)
}

func (p *Publisher) Publish(ev entity.ListingEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("id", ev.Id)).Error("Publisher: Failed to encode event")
		return
	}

	if err := p.messenger.SendMessage(Item(ev.Type), body, true); err != nil {
		zap.L().With(zap.Error(err), zap.String("id", ev.Id), zap.String("type", ev.Type)).Error("Publisher: Failed to publish event")
	}
}
