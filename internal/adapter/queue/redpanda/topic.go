package redpanda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

type requester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

// ensureTopic creates topic when missing. TOPIC_ALREADY_EXISTS counts as success.
// Broker connection errors are retried for up to 30 seconds.
func ensureTopic(ctx context.Context, client requester, topic string, partitions int32, replicationFactor int16) error {
	if topic == "" {
		return fmt.Errorf("topic name cannot be empty")
	}
	if partitions <= 0 {
		return fmt.Errorf("partitions must be greater than 0")
	}
	if replicationFactor <= 0 {
		return fmt.Errorf("replication factor must be greater than 0")
	}

	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000
	topicReq := kmsg.NewCreateTopicsRequestTopic()
	topicReq.Topic = topic
	topicReq.NumPartitions = partitions
	topicReq.ReplicationFactor = replicationFactor
	req.Topics = append(req.Topics, topicReq)

	create := func() error {
		resp, err := client.Request(ctx, &req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		createResp, ok := resp.(*kmsg.CreateTopicsResponse)
		if !ok {
			return backoff.Permanent(fmt.Errorf("unexpected response type: %T", resp))
		}
		for _, t := range createResp.Topics {
			err := kerr.ErrorForCode(t.ErrorCode)
			if err == nil {
				slog.Info("topic created", slog.String("topic", t.Topic), slog.Int("partitions", int(partitions)))
				continue
			}
			if errors.Is(err, kerr.TopicAlreadyExists) {
				slog.Info("topic already exists", slog.String("topic", t.Topic))
				continue
			}
			msg := ""
			if t.ErrorMessage != nil {
				msg = *t.ErrorMessage
			}
			if kerr.IsRetriable(err) {
				return fmt.Errorf("create topic %s: %w %s", t.Topic, err, msg)
			}
			return backoff.Permanent(fmt.Errorf("create topic %s: %w %s", t.Topic, err, msg))
		}
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 200 * time.Millisecond
	expo.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(create, backoff.WithContext(expo, ctx))
}
