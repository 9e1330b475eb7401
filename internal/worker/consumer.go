package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/provider"
	"github.com/mauphunmp-boop/ai-affiliate/internal/queue"
	"github.com/mauphunmp-boop/ai-affiliate/internal/service"
	"github.com/mauphunmp-boop/ai-affiliate/internal/upstream"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCampaignsSync, c.handleCampaignsSync)
	mux.HandleFunc(queue.TaskDatafeedsIngest, c.handleDatafeedsIngest)
	mux.HandleFunc(queue.TaskLinkcheckRotate, c.handleLinkcheckRotate)
}

func (c *Consumer) handleCampaignsSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_campaigns_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CampaignsSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_campaigns_sync_unmarshal_failed", "error", err)
		return err
	}
	result, err := c.IngestService.SyncCampaigns(ctx, service.CampaignSyncOptions{
		Statuses:         payload.Statuses,
		OnlyMy:           payload.OnlyMy,
		EnrichUserStatus: payload.EnrichUserStatus,
	})
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			logger.Warnw("worker_campaigns_sync_skip_not_configured")
			return nil
		}
		logger.Warnw("worker_campaigns_sync_failed", "error", err)
		return err
	}
	logger.Infow("worker_campaigns_sync_done",
		"fetched", result.Fetched, "upserted", result.Upserted, "skipped", result.Skipped)
	return nil
}

func (c *Consumer) handleDatafeedsIngest(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_datafeeds_ingest_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	result, err := c.IngestService.IngestDatafeedsAll(ctx)
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) {
			logger.Warnw("worker_datafeeds_ingest_skip_not_configured")
			return nil
		}
		logger.Warnw("worker_datafeeds_ingest_failed", "error", err)
		return err
	}
	logger.Infow("worker_datafeeds_ingest_done",
		"campaigns", result.Campaigns, "fetched", result.Fetched,
		"upserted", result.Upserted, "skipped", result.Skipped)
	return nil
}

func (c *Consumer) handleLinkcheckRotate(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_linkcheck_rotate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LinkcheckRotatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_linkcheck_rotate_unmarshal_failed", "error", err)
		return err
	}
	result, err := c.LinkcheckService.RunSlice(ctx, payload.DeleteDead)
	if err != nil {
		logger.Warnw("worker_linkcheck_rotate_failed", "error", err)
		return err
	}
	logger.Infow("worker_linkcheck_rotate_done",
		"cursor", result.Cursor, "checked", result.Checked,
		"dead", result.Dead, "deleted", result.Deleted)
	return nil
}
