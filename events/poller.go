package events

import (
	"context"
	"time"

	"bitwise74/vidshare/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"
)

// SQSAPI is the slice of the SQS client the poller uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type Poller struct {
	Client   SQSAPI
	QueueURL string
	Reactor  *service.Reactor
}

// Run long-polls the queue until ctx is canceled. Messages are deleted once
// every contained event is handled or deliberately discarded. On transient
// store failures the message is left alone so the queue redelivers it, the
// poller keeps no retry state of its own.
func (p *Poller) Run(ctx context.Context) {
	zap.L().Info("Finalize-event consumer starting", zap.String("queue", p.QueueURL))

	for {
		out, err := p.Client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(p.QueueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				zap.L().Info("Finalize-event consumer stopping")
				return
			}

			zap.L().Error("Failed to receive finalize events", zap.Error(err))
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range out.Messages {
			if p.handle(ctx, aws.ToString(msg.Body)) {
				_, err := p.Client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(p.QueueURL),
					ReceiptHandle: msg.ReceiptHandle,
				})
				if err != nil {
					zap.L().Warn("Failed to delete handled message", zap.Error(err))
				}
			}
		}
	}
}

// handle reports whether the message is settled and may be deleted.
func (p *Poller) handle(ctx context.Context, body string) bool {
	evs, err := ParseNotification([]byte(body))
	if err != nil {
		// Malformed payloads won't improve on redelivery
		zap.L().Warn("Dropping unparseable finalize notification", zap.Error(err))
		return true
	}

	for _, ev := range evs {
		if err := p.Reactor.HandleFinalize(ctx, ev); err != nil {
			zap.L().Error("Transient failure handling finalize event, leaving for redelivery",
				zap.String("key", ev.Key),
				zap.Error(err))
			return false
		}
	}

	return true
}
