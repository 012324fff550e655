package messenger

import (
	"errors"
	"fmt"
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"sync"
)

var (
	ErrPublishNotConfirmed = errors.New("publish was not confirmed by the broker")
)

type MessageService interface {
	SendMessage(item Item, body []byte, reliable bool) error
	Close() error
}

// Item is the kind of message sent, used as the routing key.
type Item string

func (i Item) queue() string {
	return fmt.Sprintf("%s.%s", config.Get().Index, i)
}

type Messenger struct {
	mu       sync.Mutex
	amqpUri  string
	exchange exchange
	conn     *amqp.Connection
}

func NewMessenger(amqpUri string, exchangeName string) MessageService {
	return &Messenger{amqpUri: amqpUri, exchange: marketplaceExchange(exchangeName)}
}

func (m *Messenger) SendMessage(item Item, body []byte, reliable bool) error {
	ch, err := m.openChannel()
	if err != nil {
		return err
	}
	defer ch.Close()

	ex := m.exchange
	if err := ch.ExchangeDeclare(ex.Name, ex.Type, ex.Durable, ex.AutoDeleted, ex.Internal, ex.NoWait, ex.Arguments); err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Exchange Declare")
		return err
	}

	var confirms chan amqp.Confirmation
	if reliable {
		if err := ch.Confirm(false); err != nil {
			zap.L().With(zap.Error(err)).Error("[Queue] Channel could not be put into confirm mode")
			return err
		}

		confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	}

	publishing := amqp.Publishing{
		Headers:         amqp.Table{},
		ContentType:     "application/json",
		ContentEncoding: "",
		Body:            body,
		DeliveryMode:    amqp.Persistent,
		Priority:        0,
	}

	if err = ch.Publish(ex.Name, item.queue(), false, false, publishing); err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Exchange Publish")
		return err
	}

	if confirms != nil {
		if err := m.confirmOne(confirms); err != nil {
			return err
		}
	}

	zap.L().With(zap.String("exchange", ex.Name), zap.String("routingKey", item.queue())).Info("[Queue] Published message")

	return nil
}

func (m *Messenger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil || m.conn.IsClosed() {
		return nil
	}
	return m.conn.Close()
}

func (m *Messenger) openConnection() (*amqp.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil && !m.conn.IsClosed() {
		return m.conn, nil
	}

	conn, err := amqp.Dial(m.amqpUri)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to connect to RabbitMQ")
		return nil, err
	}

	m.conn = conn

	return m.conn, nil
}

func (m *Messenger) openChannel() (*amqp.Channel, error) {
	conn, err := m.openConnection()
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		zap.S().With(zap.Error(err)).Error("[Queue] Failed to open channel")
	}

	return ch, err
}

func (m *Messenger) confirmOne(confirms <-chan amqp.Confirmation) error {
	zap.L().Debug("[Queue] Waiting for publish confirmation")

	if confirmed := <-confirms; !confirmed.Ack {
		zap.L().Warn("[Queue] Publish failed")
		return ErrPublishNotConfirmed
	}

	zap.L().Debug("[Queue] Publish confirmed")
	return nil
}
