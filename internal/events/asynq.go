package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// DefaultQueue is the asynq queue budget events are enqueued on.
const DefaultQueue = "budgets"

// TaskEnqueuer is the subset of *asynq.Client used by AsynqPublisher.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqPublisher enqueues events as asynq tasks whose type is the event topic.
type AsynqPublisher struct {
	Client   TaskEnqueuer
	Queue    string
	MaxRetry int
}

// Publish implements Publisher.
func (p AsynqPublisher) Publish(ctx context.Context, event Event) error {
	if p.Client == nil {
		return nil
	}
	task, err := NewTask(event)
	if err != nil {
		return err
	}
	queue := p.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	opts := []asynq.Option{asynq.Queue(queue), asynq.TaskID(event.ID)}
	if p.MaxRetry > 0 {
		opts = append(opts, asynq.MaxRetry(p.MaxRetry))
	}
	if _, err := p.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", event.Topic, err)
	}
	return nil
}

// NewTask encodes the event as an asynq task.
func NewTask(event Event) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return asynq.NewTask(event.Topic, data), nil
}

// DecodeTask restores an event from an asynq task payload.
func DecodeTask(task *asynq.Task) (Event, error) {
	var ev Event
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return Event{}, fmt.Errorf("decode %s: %w", task.Type(), err)
	}
	if ev.Topic == "" {
		ev.Topic = task.Type()
	}
	return ev, nil
}
