package queue

import (
	"fmt"
	"time"

	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Work queues consumed by the ingest worker. Each main queue gets a
// companion <name>_dlq and <name>_retry queue; the retry queue
// dead-letters expired messages back into the main queue.
const (
	QueueFacilityIngest = "facility_ingest"
	QueueFacilityEmbed  = "facility_embed"
	QueueDatasetPurge   = "dataset_purge"
)

var Queues = []string{QueueFacilityIngest, QueueFacilityEmbed, QueueDatasetPurge}

func Init() *amqp091.Connection {
	connURL := util.GetEnv("RABBITMQ_URL")
	if connURL == "" {
		user := util.GetEnv("RABBITMQ_USER")
		pass := util.GetEnv("RABBITMQ_PASSWORD")
		host := util.GetEnv("RABBITMQ_HOST")
		port := util.GetEnv("RABBITMQ_PORT")

		connURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/",
			user,
			pass,
			host,
			port,
		)
	}

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", name, "err", err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", dlqName, "err", err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", retryName, "err", err)
		}
	}

	return nil
}

func PublishFIFO(ch *amqp091.Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "text/plain",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	err = ch.Publish(
		"",
		q.Name,
		false,
		false,
		publishing,
	)
	if err != nil {
		return err
	}

	return nil
}
