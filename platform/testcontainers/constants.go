package testcontainers

const (
	PostgresImage = "postgres:17.0-alpine3.20"
	RedisImage    = "redis:7.4-alpine"
	KafkaImage    = "confluentinc/cp-kafka:7.6.1"
)
