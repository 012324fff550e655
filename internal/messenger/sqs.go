package messenger

import (
	"github.com/ZilDuck/nft-marketplace/internal/config"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"go.uber.org/zap"
)

type sqsMessenger struct {
	client   sqsiface.SQSAPI
	queueUrl string
}

func NewSqsMessenger(awsConfig config.AwsConfig, queueUrl string) (MessageService, error) {
	cfg := aws.NewConfig().WithRegion(awsConfig.Region)
	if awsConfig.AccessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(awsConfig.AccessKey, awsConfig.SecretKey, awsConfig.Token))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("[Queue] Failed to create aws session")
		return nil, err
	}

	return newSqsMessenger(sqs.New(sess), queueUrl), nil
}

func newSqsMessenger(client sqsiface.SQSAPI, queueUrl string) MessageService {
	return sqsMessenger{client, queueUrl}
}

// SendMessage publishes to the configured queue. SQS acknowledges every send, so reliable is
// implied.
func (m sqsMessenger) SendMessage(item Item, body []byte, _ bool) error {
	out, err := m.client.SendMessage(&sqs.SendMessageInput{
		QueueUrl:    aws.String(m.queueUrl),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(item.queue()),
			},
		},
	})
	if err != nil {
		zap.L().With(zap.Error(err), zap.String("queue", m.queueUrl)).Error("[Queue] Failed to send message")
		return err
	}

	zap.L().With(zap.String("queue", m.queueUrl), zap.String("messageId", aws.StringValue(out.MessageId))).Info("[Queue] Published message")

	return nil
}

func (m sqsMessenger) Close() error {
	return nil
}
