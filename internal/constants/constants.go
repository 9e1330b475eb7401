package constants

// 上游数据源标识
const (
	SourceAccesstrade = "accesstrade"
	SourceExcel       = "excel"
)

// Offer 来源类型
const (
	SourceTypeDatafeed    = "datafeed"
	SourceTypeTopProducts = "top_products"
	SourceTypePromotions  = "promotions"
	SourceTypeManual      = "manual"
	SourceTypeExcel       = "excel"
)

// Campaign 状态
const (
	CampaignStatusRunning = "running"
	CampaignStatusPaused  = "paused"
)

// 发布者注册状态（user_registration_status 的规范取值）
const (
	RegistrationNotRegistered = "NOT_REGISTERED"
	RegistrationPending       = "PENDING"
	RegistrationApproved      = "APPROVED"
	// RegistrationSuccessful 上游旧写法，入库前统一改写为 APPROVED
	RegistrationSuccessful = "SUCCESSFUL"
)

// Offer 快照里的 approval_status 取值（沿用上游小写风格）
const (
	ApprovalSnapshotSuccessful   = "successful"
	ApprovalSnapshotPending      = "pending"
	ApprovalSnapshotUnregistered = "unregistered"
)

// API 配置行名称
const (
	ConfigNameAccesstrade  = "accesstrade"
	ConfigNameIngestPolicy = "ingest_policy"
)

// ingest_policy 行里的策略键
const (
	PolicyKeyOnlyWithCommission = "only_with_commission"
	PolicyKeyCheckURLs          = "check_urls"
	PolicyKeyLinkcheckCursor    = "linkcheck_cursor"
	PolicyKeyLinkcheckMod       = "linkcheck_mod"
	PolicyKeyLinkcheckLimit     = "linkcheck_limit"
)

// 队列与任务
const (
	QueueDefault = "default"

	TaskCampaignsSync   = "ingest:campaigns_sync"
	TaskDatafeedsIngest = "ingest:datafeeds_all"
	TaskLinkcheckRotate = "maintenance:linkcheck_rotate"
)
