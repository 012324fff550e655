package messenger

import (
	"encoding/json"
	"errors"
	"github.com/ZilDuck/nft-marketplace/internal/entity"
	"github.com/ZilDuck/nft-marketplace/internal/event"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
)

type sentMessage struct {
	item Item
	body []byte
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) SendMessage(item Item, body []byte, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{item, body})
	return nil
}

func (f *fakeMessenger) Close() error {
	return nil
}

func TestPublisherForwardsEvents(t *testing.T) {
	fake := &fakeMessenger{}
	events := event.NewManager()
	NewPublisher(fake).Listen(events)

	listing := &entity.Listing{Id: 4, State: entity.ListingReleased}
	events.EmitEvent(event.ListingSoldEvent, entity.ListingEvent{Id: "abc", Type: string(event.ListingSoldEvent), Listing: listing})
	events.Close()

	require.Len(t, fake.sent, 1)
	require.Equal(t, Item("listing.sold"), fake.sent[0].item)

	var decoded entity.ListingEvent
	require.NoError(t, json.Unmarshal(fake.sent[0].body, &decoded))
	require.Equal(t, "abc", decoded.Id)
	require.Equal(t, uint64(4), decoded.Listing.Id)
	require.Equal(t, entity.ListingReleased, decoded.Listing.State)
}

func TestPublisherSwallowsSendFailures(t *testing.T) {
	fake := &fakeMessenger{err: errors.New("broker down")}

	NewPublisher(fake).Publish(entity.ListingEvent{Id: "abc", Type: string(event.ConfigUpdatedEvent)})
	require.Empty(t, fake.sent)
}

type fakeSqs struct {
	sqsiface.SQSAPI
	input *sqs.SendMessageInput
}

func (f *fakeSqs) SendMessage(input *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	f.input = input
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSqsMessengerSendMessage(t *testing.T) {
	client := &fakeSqs{}
	m := newSqsMessenger(client, "https://sqs.eu-west-1.amazonaws.com/1/marketplace")

	require.NoError(t, m.SendMessage(Item("listing.created"), []byte(`{"id":"abc"}`), true))
	require.Equal(t, "https://sqs.eu-west-1.amazonaws.com/1/marketplace", aws.StringValue(client.input.QueueUrl))
	require.Equal(t, `{"id":"abc"}`, aws.StringValue(client.input.MessageBody))
	require.Equal(t, Item("listing.created").queue(), aws.StringValue(client.input.MessageAttributes["type"].StringValue))
	require.NoError(t, m.Close())
}
