//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	id "examreg/pkg/domain"
	audit "examreg/pkg/platform/audit"
	"examreg/pkg/platform/audit/publishers/kafka"
	"examreg/pkg/platform/audit/store/memory"
	"examreg/pkg/platform/audit/worker"
	"examreg/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *ProducerSuite) TestRelayPublishesOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "audit-" + id.NewRecordID().String()
	producer, err := kafka.NewProducer(s.redpanda.Brokers, topic)
	s.Require().NoError(err)
	defer producer.Close()
	s.Require().NoError(producer.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(producer.EnsureTopic(ctx, 1, 1), "second call tolerates an existing topic")

	store := memory.NewInMemoryStore()
	accountID := id.NewAccountID()
	s.Require().NoError(store.Append(ctx, audit.Event{
		AccountID: accountID,
		Action:    string(audit.EventApplicationSubmitted),
		Category:  audit.CategoryCompliance,
		Subject:   "application",
	}))

	n, err := worker.NewRelay(store, producer).Flush(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal("compliance", string(records[0].Key))

	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(accountID, got.AccountID)
	s.Equal(string(audit.EventApplicationSubmitted), got.Action)
}
