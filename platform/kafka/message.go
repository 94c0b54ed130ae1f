package kafka

import "time"

// Message is a consumed record detached from sarama types.
type Message struct {
	Headers   map[string][]byte
	Timestamp time.Time

	Key       []byte
	Value     []byte
	Topic     string
	Partition int32
	Offset    int64
}

func (m Message) Header(key string) string { return string(m.Headers[key]) }

// OutgoingMessage is a record to publish on the producer's topic.
type OutgoingMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
