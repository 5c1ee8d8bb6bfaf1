package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

type RabbitmqMqProvider struct {
	connection *amqp.Connection
	channel    *amqp.Channel
}

func NewRabbitmqMqProvider(connectionString string) (*RabbitmqMqProvider, error) {
	provider := &RabbitmqMqProvider{}
	if err := provider.Connect(connectionString); err != nil {
		return nil, err
	}

	return provider, nil
}

func (r *RabbitmqMqProvider) Connect(connectionString string) error {
	connection, err := amqp.Dial(connectionString)
	if err != nil {
		return err
	}

	r.connection = connection
	r.channel, err = r.connection.Channel()
	if err != nil {
		return err
	}

	return nil
}

func (r *RabbitmqMqProvider) Disconnect() {
	if r.connection == nil {
		return
	}

	r.connection.Close()
}

func (r *RabbitmqMqProvider) DeclareExchange(name, kind string, durable bool) error {
	err := r.channel.ExchangeDeclare(name, kind, durable, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %v", err)
	}

	return nil
}

func (r *RabbitmqMqProvider) Publish(exchange, routingKey string, data interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return r.channel.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:     "application/json",
			ContentEncoding: "utf-8",
			Body:            bytes,
			DeliveryMode:    amqp.Persistent,
			Timestamp:       time.Now(),
		},
	)
}

func (r *RabbitmqMqProvider) Subscribe(ctx context.Context, queue string, callback func(data []byte) error) error {
	q, err := r.channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	msgs, err := r.channel.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				if err := callback(msg.Body); err != nil {
					msg.Nack(false, true)
					continue
				}

				msg.Ack(false)
			}
		}
	}()

	return nil
}
