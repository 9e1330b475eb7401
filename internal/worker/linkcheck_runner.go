package worker

import (
	"context"
	"errors"
	"time"

	"github.com/mauphunmp-boop/ai-affiliate/internal/config"
	"github.com/mauphunmp-boop/ai-affiliate/internal/logger"
	"github.com/mauphunmp-boop/ai-affiliate/internal/provider"
)

// LinkcheckRunner 链接巡检轮转服务。
// 每个周期跑一个分片，连续 mod 个周期即覆盖全量报价。
type LinkcheckRunner struct {
	name      string
	container *provider.Container
	cfg       config.LinkcheckConfig
}

// NewLinkcheckRunner 创建链接巡检轮转服务
func NewLinkcheckRunner(cfg config.LinkcheckConfig, container *provider.Container) (*LinkcheckRunner, error) {
	if !cfg.Enabled {
		return nil, errors.New("linkcheck disabled")
	}
	if container == nil || container.LinkcheckService == nil {
		return nil, errors.New("linkcheck service is nil")
	}
	return &LinkcheckRunner{
		name:      "linkcheck",
		container: container,
		cfg:       cfg,
	}, nil
}

// Name 服务名称
func (r *LinkcheckRunner) Name() string {
	if r == nil || r.name == "" {
		return "linkcheck"
	}
	return r.name
}

// Start 启动巡检循环
func (r *LinkcheckRunner) Start(ctx context.Context) error {
	if r == nil || r.container == nil || r.container.LinkcheckService == nil {
		return errors.New("linkcheck runner not initialized")
	}
	interval := time.Duration(r.cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	runOnce := func() {
		result, err := r.container.LinkcheckService.RunSlice(ctx, r.cfg.DeleteDead)
		if err != nil {
			logger.Warnw("linkcheck_slice_failed", "error", err)
			return
		}
		logger.Infow("linkcheck_slice_done",
			"cursor", result.Cursor,
			"checked", result.Checked,
			"dead", result.Dead,
			"deleted", result.Deleted,
		)
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			runOnce()
		}
	}
}

// Stop 停止巡检循环
func (r *LinkcheckRunner) Stop(ctx context.Context) error {
	return nil
}
