package events

import (
	"encoding/json"
	"log/slog"

	"github.com/IBM/sarama"

	"remaudio-service/internal/multiplay"
)

// Producer publishes room activity records to Kafka for analytics. Records
// pass through a buffered queue so the relay path never waits on the broker;
// when the queue is full the record is dropped.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	queue    chan multiplay.Activity
	done     chan struct{}
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "remaudio-service"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	p := &Producer{
		producer: producer,
		topic:    topic,
		queue:    make(chan multiplay.Activity, 256),
		done:     make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// PublishActivity queues an activity record without blocking.
func (p *Producer) PublishActivity(event multiplay.Activity) {
	select {
	case p.queue <- event:
	default:
		slog.Warn("events: queue full, dropping activity", "type", event.Type, "room", event.RoomID)
	}
}

func (p *Producer) run() {
	defer close(p.done)
	for event := range p.queue {
		data, err := json.Marshal(event)
		if err != nil {
			slog.Error("events: marshal failed", "type", event.Type, "error", err)
			continue
		}
		_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(event.RoomID),
			Value: sarama.ByteEncoder(data),
		})
		if err != nil {
			slog.Error("events: publish failed", "type", event.Type, "room", event.RoomID, "error", err)
		}
	}
}

// Close drains the queue and releases the underlying producer.
func (p *Producer) Close() error {
	close(p.queue)
	<-p.done
	return p.producer.Close()
}
