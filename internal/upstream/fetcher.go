package upstream

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// PageFunc 单页拉取函数：返回该页记录，超时类错误交由抓取器重试
type PageFunc func(ctx context.Context, page, limit int) ([]Record, error)

// FetcherOptions 窗口并发抓取参数
type FetcherOptions struct {
	LimitPerPage    int // 每页条数（重试时逐次减半）
	MinLimit        int // 减半下限
	MaxPages        int // 页数上限
	WindowPages     int // 窗口宽度（窗口内并发，窗口间串行）
	PageConcurrency int // 窗口内同时在途请求上限
	MaxAttempts     int // 单页尝试次数上限
}

func (o *FetcherOptions) normalize() {
	if o.LimitPerPage < 1 {
		o.LimitPerPage = 50
	}
	if o.MinLimit < 1 {
		o.MinLimit = 20
	}
	if o.MaxPages < 1 {
		o.MaxPages = 1000
	}
	if o.WindowPages < 1 {
		o.WindowPages = 10
	}
	if o.PageConcurrency < 1 {
		o.PageConcurrency = 6
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 3
	}
}

// Fetcher 窗口并发抓取器：按窗口推进页号，窗口内并发拉取，
// 某个窗口整体为空即视为数据耗尽并停止。
type Fetcher struct {
	options FetcherOptions
	sleep   func(time.Duration) // 重试退避，测试可注入
}

// NewFetcher 创建抓取器
func NewFetcher(options FetcherOptions) *Fetcher {
	options.normalize()
	return &Fetcher{options: options, sleep: time.Sleep}
}

// WithSleep 替换退避函数（测试用）
func (f *Fetcher) WithSleep(sleep func(time.Duration)) *Fetcher {
	f.sleep = sleep
	return f
}

// pageState 单页抓取状态机：attempt 与当前页大小一起推进
type pageState struct {
	page    int
	attempt int
	limit   int
}

// fetchPage 单页拉取：超时则退避 1.2×attempt 秒并按半页重试，
// 尝试耗尽或遇到非超时失败时退化为空页。
// 并发额度只覆盖在途请求，退避等待不占额度。
func (f *Fetcher) fetchPage(ctx context.Context, sem chan struct{}, fetch PageFunc, page int) []Record {
	state := pageState{page: page, attempt: 1, limit: f.options.LimitPerPage}
	for state.attempt <= f.options.MaxAttempts {
		sem <- struct{}{}
		items, err := fetch(ctx, state.page, state.limit)
		<-sem
		if err == nil {
			return items
		}
		if !isTimeout(err) {
			return nil
		}
		f.sleep(time.Duration(float64(state.attempt) * 1.2 * float64(time.Second)))
		state.limit = state.limit / 2
		if state.limit < f.options.MinLimit {
			state.limit = f.options.MinLimit
		}
		state.attempt++
	}
	return nil
}

// FetchAll 按窗口抓取所有页并按页号顺序拼接结果。
// 窗口本身是同步屏障：上一窗口全部完成后才开启下一窗口。
func (f *Fetcher) FetchAll(ctx context.Context, fetch PageFunc) []Record {
	var out []Record
	sem := make(chan struct{}, f.options.PageConcurrency)

	page := 1
	for page <= f.options.MaxPages {
		end := page + f.options.WindowPages - 1
		if end > f.options.MaxPages {
			end = f.options.MaxPages
		}

		results := make([][]Record, end-page+1)
		var wg sync.WaitGroup
		for p := page; p <= end; p++ {
			wg.Add(1)
			go func(p, slot int) {
				defer wg.Done()
				results[slot] = f.fetchPage(ctx, sem, fetch, p)
			}(p, p-page)
		}
		wg.Wait()

		gotAny := false
		for _, items := range results {
			if len(items) > 0 {
				out = append(out, items...)
				gotAny = true
			}
		}
		if !gotAny {
			break
		}
		page = end + 1
	}
	return out
}

// isTimeout 判断是否为可重试的超时类错误
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
