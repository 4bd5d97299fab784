package kafka

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Shopify/sarama"

	"seedgen/sink"
)

type KafkaConfig struct {
	Brokers string

	// Do not recreate a topic when it exists. The default value is false.
	// It can be enabled if the generator is not authorized to create topics.
	NoRecreateIfExists bool
}

// KafkaSink publishes each table as a topic of JSON messages keyed by the
// row's partition key.
type KafkaSink struct {
	admin  sarama.ClusterAdmin
	cfg    KafkaConfig
	client sarama.SyncProducer
}

func newKafkaConfig() *sarama.Config {
	version, err := sarama.ParseKafkaVersion("1.1.1")
	if err != nil {
		panic(fmt.Sprintf("failed to parse Kafka version: %v", err))
	}
	config := sarama.NewConfig()
	config.Version = version
	config.Net.DialTimeout = 3 * time.Second
	config.Admin.Timeout = 5 * time.Second
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Return.Successes = true
	return config
}

func OpenKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	brokers := strings.Split(cfg.Brokers, ",")
	admin, err := sarama.NewClusterAdmin(brokers, newKafkaConfig())
	if err != nil {
		return nil, err
	}
	client, err := sarama.NewSyncProducer(brokers, newKafkaConfig())
	if err != nil {
		return nil, fmt.Errorf("NewSyncProducer failed: %v", err)
	}
	return &KafkaSink{
		admin:  admin,
		cfg:    cfg,
		client: client,
	}, nil
}

// Prepare recreates one topic per table, which is the closest queue
// equivalent of the replace write.
func (p *KafkaSink) Prepare(ctx context.Context, tables []sink.TableSchema) error {
	topics, err := p.admin.ListTopics()
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := p.createTopic(t.Name, topics); err != nil {
			return err
		}
	}
	return nil
}

func (p *KafkaSink) createTopic(name string, topics map[string]sarama.TopicDetail) error {
	_, exists := topics[name]
	if p.cfg.NoRecreateIfExists {
		if exists {
			return nil
		}
		return fmt.Errorf("topic \"%s\" does not exist", name)
	}
	if exists {
		if err := p.admin.DeleteTopic(name); err != nil {
			return err
		}
		log.Printf("Deleted an existing topic: %s", name)
	}
	log.Printf("Creating topic: %s", name)
	return p.admin.CreateTopic(name, &sarama.TopicDetail{
		NumPartitions:     16,
		ReplicationFactor: 1,
	}, false)
}

func (p *KafkaSink) WriteBatch(ctx context.Context, rows []sink.Row) error {
	msgs := make([]*sarama.ProducerMessage, 0, len(rows))
	for _, r := range rows {
		data, err := sink.RowToJSON(r)
		if err != nil {
			return err
		}
		msgs = append(msgs, &sarama.ProducerMessage{
			Topic: r.Table(),
			Key:   sarama.StringEncoder(r.Key()),
			Value: sarama.ByteEncoder(data),
		})
	}
	return p.client.SendMessages(msgs)
}

func (p *KafkaSink) Close() error {
	if err := p.client.Close(); err != nil {
		return err
	}
	return p.admin.Close()
}
