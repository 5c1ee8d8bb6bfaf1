package mq

import "context"

type IMqProvider interface {
	Connect(connectionString string) error
	Disconnect()
	DeclareExchange(name, kind string, durable bool) error
	Publish(exchange, routingKey string, data interface{}) error
	Subscribe(ctx context.Context, queue string, callback func(data []byte) error) error
}
