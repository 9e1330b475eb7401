package queue

import (
	"encoding/json"

	"github.com/mauphunmp-boop/ai-affiliate/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCampaignsSync 活动同步任务
	TaskCampaignsSync = constants.TaskCampaignsSync
	// TaskDatafeedsIngest 商品流全量入库任务
	TaskDatafeedsIngest = constants.TaskDatafeedsIngest
	// TaskLinkcheckRotate 链接巡检分片任务
	TaskLinkcheckRotate = constants.TaskLinkcheckRotate
)

// CampaignsSyncPayload 活动同步任务载荷
type CampaignsSyncPayload struct {
	Statuses         []string `json:"statuses"`
	OnlyMy           bool     `json:"only_my"`
	EnrichUserStatus bool     `json:"enrich_user_status"`
}

// DatafeedsIngestPayload 商品流入库任务载荷（全量，无参数）
type DatafeedsIngestPayload struct{}

// LinkcheckRotatePayload 链接巡检任务载荷
type LinkcheckRotatePayload struct {
	DeleteDead bool `json:"delete_dead"`
}

// NewCampaignsSyncTask 创建活动同步任务
func NewCampaignsSyncTask(payload CampaignsSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCampaignsSync, body), nil
}

// NewDatafeedsIngestTask 创建商品流入库任务
func NewDatafeedsIngestTask(payload DatafeedsIngestPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDatafeedsIngest, body), nil
}

// NewLinkcheckRotateTask 创建链接巡检任务
func NewLinkcheckRotateTask(payload LinkcheckRotatePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLinkcheckRotate, body), nil
}
