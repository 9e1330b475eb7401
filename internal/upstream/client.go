package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured 上游接入未配置（缺少 base_url 或 api_key）
var ErrNotConfigured = errors.New("upstream: accesstrade api not configured")

// Credentials 上游接入凭据
type Credentials struct {
	BaseURL string
	APIKey  string
}

// CredentialSource 上游凭据来源（每次请求时取，配置行可热更新）
type CredentialSource interface {
	Credentials() (Credentials, error)
}

// ClientOptions 上游客户端参数
type ClientOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Client 联盟网络 API 客户端。
// 所有读取口径一致：非 200、响应体异常一律退化为空结果，不向上抛错。
type Client struct {
	httpClient *http.Client
	creds      CredentialSource
	sink       *Sink
}

// NewClient 创建上游客户端
func NewClient(creds CredentialSource, sink *Sink, options ClientOptions) *Client {
	readTimeout := options.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 60 * time.Second
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = readTimeout
	transport.TLSHandshakeTimeout = connectTimeout
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   readTimeout,
		},
		creds: creds,
		sink:  sink,
	}
}

// ForRun 派生一个把 run_id 写进每条流水的客户端副本
func (c *Client) ForRun(runID string) *Client {
	clone := *c
	clone.sink = c.sink.With("run_id", runID)
	return &clone
}

type apiResponse struct {
	status int
	body   map[string]interface{}
}

// getJSON 带凭据请求上游并解析 JSON 对象；
// 超时类错误原样返回供重试判定，其余失败以 status/空体表达。
func (c *Client) getJSON(ctx context.Context, path string, params url.Values) (apiResponse, error) {
	creds, err := c.creds.Credentials()
	if err != nil {
		return apiResponse{}, err
	}
	if strings.TrimSpace(creds.BaseURL) == "" || strings.TrimSpace(creds.APIKey) == "" {
		return apiResponse{}, ErrNotConfigured
	}

	endpoint := strings.TrimRight(creds.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apiResponse{}, err
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Authorization", "Token "+creds.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	result := apiResponse{status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return result, nil
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// 响应体异常按语义失败处理，退化为空
		return result, nil
	}
	result.body = body
	return result, nil
}

// dataList 从响应体提取 data 列表（单对象包装为单元素列表）
func dataList(body map[string]interface{}) []Record {
	if body == nil {
		return nil
	}
	switch d := body["data"].(type) {
	case []interface{}:
		out := make([]Record, 0, len(d))
		for _, item := range d {
			if m, ok := item.(map[string]interface{}); ok {
				out = append(out, Record(m))
			}
		}
		return out
	case map[string]interface{}:
		return []Record{Record(d)}
	default:
		return nil
	}
}

// CampaignsPage 分页拉取活动列表。
// 供窗口并发抓取器逐页调用：超时错误返回给调用方决定重试，
// 其余失败一律退化为空页。
func (c *Client) CampaignsPage(ctx context.Context, status string, page, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if status != "" {
		params.Set("status", status)
	}
	resp, err := c.getJSON(ctx, "/v1/campaigns", params)
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		c.sink.Write("campaigns_full", "page", page, "limit", limit, "status_filter", status, "ok", false, "error", err.Error())
		return nil, nil
	}
	items := dataList(resp.body)
	c.sink.Write("campaigns_full",
		"page", page, "limit", limit, "status_filter", status,
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "count", len(items))
	return items, nil
}

// ActiveCampaigns 拉取 running 活动映射（campaign_id -> merchant 小写）
func (c *Client) ActiveCampaigns(ctx context.Context) (map[string]string, error) {
	params := url.Values{}
	params.Set("status", "running")
	resp, err := c.getJSON(ctx, "/v1/campaigns", params)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, camp := range dataList(resp.body) {
		campID := camp.FirstStr("campaign_id", "id")
		merchant := strings.ToLower(camp.FirstStr("merchant", "name"))
		if campID != "" && merchant != "" {
			result[campID] = merchant
		}
	}
	c.sink.Write("campaigns_active",
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "items_count", len(result))
	return result, nil
}

// CampaignDetail 拉取单个活动详情（data 为列表时取第一条）
func (c *Client) CampaignDetail(ctx context.Context, campaignID string) (Record, error) {
	params := url.Values{}
	params.Set("campaign_id", campaignID)
	resp, err := c.getJSON(ctx, "/v1/campaigns", params)
	if err != nil {
		return nil, err
	}
	var detail Record
	if items := dataList(resp.body); len(items) > 0 {
		detail = items[0]
	}
	c.sink.Write("campaign_detail",
		"campaign_id", campaignID, "ok", resp.status == http.StatusOK,
		"status_code", resp.status, "empty", detail == nil)
	return detail, nil
}

// Datafeeds 拉取商品流（上游以 campaign 参数承载 merchant）
func (c *Client) Datafeeds(ctx context.Context, merchant string, page, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("campaign", merchant)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	resp, err := c.getJSON(ctx, "/v1/datafeeds", params)
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		c.sink.Write("datafeeds", "merchant", merchant, "page", page, "ok", false, "error", err.Error())
		return nil, nil
	}
	items := dataList(resp.body)
	c.sink.Write("datafeeds",
		"merchant", merchant, "page", page, "limit", limit,
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "items_count", len(items))
	return items, nil
}

// Products 按任意商品路径拉取（手动入库入口）。
// /v1/datafeeds 的商家筛选参数名为 campaign，传 merchant 时自动改写。
func (c *Client) Products(ctx context.Context, path string, rawParams map[string]string) ([]Record, error) {
	params := url.Values{}
	for k, v := range rawParams {
		params.Set(k, v)
	}
	if strings.HasSuffix(strings.TrimRight(path, "/"), "/v1/datafeeds") || strings.TrimLeft(path, "/") == "v1/datafeeds" {
		if m := params.Get("merchant"); m != "" && params.Get("campaign") == "" {
			params.Del("merchant")
			params.Set("campaign", m)
		}
	}
	resp, err := c.getJSON(ctx, path, params)
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	}
	items := dataList(resp.body)
	c.sink.Write("datafeeds",
		"endpoint", strings.TrimLeft(path, "/"), "params", rawParams,
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "items_count", len(items))
	return items, nil
}

// Promotions 拉取商家促销列表
func (c *Client) Promotions(ctx context.Context, merchant string) ([]Record, error) {
	params := url.Values{}
	params.Set("merchant", merchant)
	resp, err := c.getJSON(ctx, "/v1/offers_informations", params)
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	}
	items := dataList(resp.body)
	c.sink.Write("promotions",
		"merchant", strings.ToLower(merchant),
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "items_count", len(items))
	return items, nil
}

// TopProducts 拉取商家热销商品
func (c *Client) TopProducts(ctx context.Context, merchant, dateFrom, dateTo string, page, limit int) ([]Record, error) {
	params := url.Values{}
	params.Set("merchant", merchant)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if dateFrom != "" {
		params.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		params.Set("date_to", dateTo)
	}
	resp, err := c.getJSON(ctx, "/v1/top_products", params)
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	}
	items := dataList(resp.body)
	c.sink.Write("top_products",
		"merchant", strings.ToLower(merchant),
		"ok", resp.status == http.StatusOK, "status_code", resp.status, "items_count", len(items))
	return items, nil
}

// CommissionPolicies 拉取佣金政策。
// 个别上游版本用 camp_id 作为参数名，campaign_id 为空时回退重试一次。
func (c *Client) CommissionPolicies(ctx context.Context, campaignID string) ([]Record, error) {
	call := func(paramKey string) ([]Record, int, error) {
		params := url.Values{}
		params.Set(paramKey, campaignID)
		resp, err := c.getJSON(ctx, "/v1/commission_policies", params)
		if err != nil {
			return nil, 0, err
		}
		return dataList(resp.body), resp.status, nil
	}

	items, status, err := call("campaign_id")
	if err == nil && len(items) == 0 {
		items, status, err = call("camp_id")
	}
	if err != nil {
		if isTimeout(err) || errors.Is(err, ErrNotConfigured) {
			return nil, err
		}
		return nil, nil
	}
	c.sink.Write("commission_policies",
		"campaign_id", campaignID, "ok", status == http.StatusOK,
		"status_code", status, "items_count", len(items))
	return items, nil
}
