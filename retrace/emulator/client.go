package emulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/ratelimit"
	"github.com/vmihailenco/msgpack/v5"
)

const DefaultQueue = "emulatorqueue"

// Client talks to the emulator worker over Redis: the task goes to a list,
// completion is announced on a per-task channel and the result is stored
// under a per-task key.
type Client struct {
	rdb     *redis.Client
	queue   string
	timeout time.Duration
	limiter *ratelimit.Limiter
	logger  *logrus.Logger
}

func NewClient(rdb *redis.Client, queue string, timeout time.Duration, limiter *ratelimit.Limiter, logger *logrus.Logger) *Client {
	if len(queue) == 0 {
		queue = DefaultQueue
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{rdb: rdb, queue: queue, timeout: timeout, limiter: limiter, logger: logger}
}

func generateTaskID() string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, 10)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

func backendError(op string, err error) error {
	return models.EmulationBackendError{Op: op, Err: err}
}

// Emulate submits tx for re-execution and waits for the worker's result.
// Every failure to obtain a result is an EmulationBackendError.
func (c *Client) Emulate(ctx context.Context, tx *models.TransactionData) (*RawEmulation, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, backendError("rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	taskID := generateTaskID()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeRetraceTask(enc, NewRetraceTask(taskID, tx)); err != nil {
		return nil, fmt.Errorf("failed to serialize task: %w", err)
	}

	pubsub := c.rdb.Subscribe(ctx, "emulator_channel_"+taskID)
	defer pubsub.Close()
	// the subscription must be active before the worker can answer
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, backendError("subscribe", err)
	}

	if err := c.rdb.LPush(ctx, c.queue, buf.Bytes()).Err(); err != nil {
		return nil, backendError("push task", err)
	}
	c.logger.WithFields(logrus.Fields{
		"task_id": taskID,
		"lt":      tx.Locator.Lt,
		"network": tx.Locator.Network,
	}).Debug("emulation task pushed")

	var msg *redis.Message
	select {
	case <-ctx.Done():
		return nil, backendError("wait result", ctx.Err())
	case m, ok := <-pubsub.Channel():
		if !ok {
			return nil, backendError("wait result", errors.New("emulator channel closed"))
		}
		msg = m
	}
	switch msg.Payload {
	case "success":
	case "error":
		error_msg, err := c.rdb.Get(ctx, "emulator_error_"+taskID).Result()
		if err != nil {
			return nil, backendError("read error", err)
		}
		return nil, backendError("emulate", errors.New(error_msg))
	default:
		return nil, backendError("wait result", fmt.Errorf("unexpected message from emulator channel: %s", msg.Payload))
	}

	data, err := c.rdb.Get(ctx, "result_"+taskID).Bytes()
	if err != nil {
		return nil, backendError("read result", err)
	}
	var res RawEmulation
	if err := msgpack.Unmarshal(data, &res); err != nil {
		return nil, backendError("decode result", err)
	}
	return &res, nil
}
