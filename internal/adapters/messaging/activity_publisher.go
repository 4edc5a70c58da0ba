package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AchilleasB/membership-console/internal/core/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

func (rmq *RabbitMQBroker) PublishActivity(ctx context.Context, evt ports.ActivityEvent) error {
	msg, err := activityMessage(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			msg,
		)
		return nil, err
	})
	return err
}

// activityMessage carries the event id and type in the AMQP properties so
// consumers can route and de-duplicate without decoding the body.
func activityMessage(evt ports.ActivityEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.ID,
		Type:         string(evt.Type),
		Timestamp:    evt.OccurredAt,
		AppId:        "membership-console",
		Body:         body,
	}, nil
}
