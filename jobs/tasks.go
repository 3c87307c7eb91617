package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDailyRecap summarises the day's position into the notification feed.
	TaskDailyRecap = "finance:daily_recap"
	// TaskLowStockScan flags qat categories at or below their threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// DailyRecapPayload parametrises the recap job.
type DailyRecapPayload struct {
	// Currency restricts the recap to one currency; empty means all three.
	Currency string `json:"currency,omitempty"`
}

// NewDailyRecapTask constructs the recap task.
func NewDailyRecapTask(payload DailyRecapPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyRecap, data), nil
}

// NewLowStockScanTask constructs the low-stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueDailyRecap enqueues a recap run.
func (c *Client) EnqueueDailyRecap(ctx context.Context, payload DailyRecapPayload) (*asynq.TaskInfo, error) {
	task, err := NewDailyRecapTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueLowStockScan enqueues a scan run.
func (c *Client) EnqueueLowStockScan(ctx context.Context) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, NewLowStockScanTask(), asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
