package mq_test

import (
	"github.com/minhvu/catalogue/internal/storage/mq"
)

// The cmd mains defer Close on both clients during shutdown; keep the
// method set pinned at compile time.
var (
	_ interface{ Close() } = (*mq.KafkaConsumer)(nil)
	_ interface{ Close() } = (*mq.KafkaProducer)(nil)
)
