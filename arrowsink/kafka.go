package arrowsink

import (
	"github.com/Shopify/sarama"
	"github.com/arrowtable/arrowtable/logger"
	"github.com/arrowtable/arrowtable/kafka"
)

// NewKafkaClient returns a Kafka client configured via kafka.NewClient,
// the connection an arrowtrace consumer reuses for partition
// consumption.
func NewKafkaClient(brokers []string) (sarama.Client, error) {
	return kafka.NewClient(brokers)
}

// KafkaTraceSource reads trace lines off a Kafka topic and hands each
// to a TraceLineHandler, one partition consumer per partition,
// starting from the newest offset at the time it is started.
type KafkaTraceSource struct {
	client   sarama.Client
	consumer sarama.Consumer
	topic    string
	log      logger.Logger
}

// TraceLineHandler is called once per Kafka message value, expected to
// be a single arrowtrace line.
type TraceLineHandler func(line string) error

// NewKafkaTraceSource wraps an existing sarama.Client (typically one
// built with NewKafkaClient) to consume topic.
func NewKafkaTraceSource(client sarama.Client, topic string, log logger.Logger) (*KafkaTraceSource, error) {
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		return nil, err
	}
	return &KafkaTraceSource{client: client, consumer: consumer, topic: topic, log: log}, nil
}

// Run consumes every partition of the topic until stop is closed,
// invoking handle for each message. It returns the first error
// encountered setting up a partition consumer; per-message handler
// errors are logged, not fatal, so one bad line doesn't kill the feed.
func (s *KafkaTraceSource) Run(stop <-chan struct{}, handle TraceLineHandler) error {
	partitions, err := s.consumer.Partitions(s.topic)
	if err != nil {
		return err
	}
	done := make(chan struct{}, len(partitions))
	for _, p := range partitions {
		pc, err := s.consumer.ConsumePartition(s.topic, p, sarama.OffsetNewest)
		if err != nil {
			return err
		}
		go func(pc sarama.PartitionConsumer) {
			defer func() { done <- struct{}{} }()
			for {
				select {
				case <-stop:
					pc.Close()
					return
				case msg, ok := <-pc.Messages():
					if !ok {
						return
					}
					if err := handle(string(msg.Value)); err != nil {
						s.log.Errorf("arrowsink: handling kafka message at offset %d: %s", msg.Offset, err)
					}
				case err, ok := <-pc.Errors():
					if !ok {
						return
					}
					s.log.Infof("arrowsink: kafka partition consumer error: %s", err)
				}
			}
		}(pc)
	}
	for range partitions {
		<-done
	}
	return nil
}

// Close releases the consumer and client.
func (s *KafkaTraceSource) Close() error {
	if err := s.consumer.Close(); err != nil {
		return err
	}
	return s.client.Close()
}
