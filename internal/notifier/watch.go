package notifier

import (
	"context"
	"fmt"
	"strings"

	"trend-radar/internal/model"
)

// WatchStore 定义订阅读取接口。
type WatchStore interface {
	ListWatches(ctx context.Context) ([]model.Watch, error)
}

// jobNotifier 提供统一通知接口。
type jobNotifier interface {
	Notify(ctx context.Context, jobs []model.Job) error
}

// WatchNotifier 按关键词订阅过滤新增职位并逐个订阅者发送邮件。
type WatchNotifier struct {
	store    WatchStore
	emailCfg EmailConfig
	sender   EmailSender
	fallback jobNotifier
}

// NewWatchNotifier 创建实例。
func NewWatchNotifier(store WatchStore, cfg EmailConfig, sender EmailSender, fallback jobNotifier) *WatchNotifier {
	return &WatchNotifier{
		store:    store,
		emailCfg: cfg,
		sender:   sender,
		fallback: fallback,
	}
}

// Notify 根据订阅过滤并发送消息。没有任何订阅时走 fallback。
func (n *WatchNotifier) Notify(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 || n.store == nil {
		return nil
	}

	watches, err := n.store.ListWatches(ctx)
	if err != nil {
		return fmt.Errorf("list watches: %w", err)
	}
	if len(watches) == 0 {
		if n.fallback != nil {
			return n.fallback.Notify(ctx, jobs)
		}
		return nil
	}

	for _, w := range watches {
		if strings.TrimSpace(w.Email) == "" {
			continue
		}
		matches := filterJobsByWatch(w, jobs)
		if len(matches) == 0 {
			continue
		}

		cfg := n.emailCfg
		cfg.To = []string{w.Email}
		if cfg.Subject == "" {
			cfg.Subject = fmt.Sprintf("New job listings for %q", w.Keyword)
		}
		email := NewEmailNotifier(cfg, n.sender)
		if err := email.Notify(ctx, matches); err != nil {
			return err
		}
	}

	return nil
}

func filterJobsByWatch(w model.Watch, jobs []model.Job) []model.Job {
	filtered := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if jobMatchesWatch(job, w) {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

func jobMatchesWatch(job model.Job, w model.Watch) bool {
	keyword := strings.ToLower(strings.TrimSpace(w.Keyword))
	if keyword != "" {
		haystack := strings.ToLower(job.SearchKeyword + " " + job.Title)
		if !strings.Contains(haystack, keyword) {
			return false
		}
	}
	if len(w.Sources) == 0 {
		return true
	}
	for name, v := range w.Sources {
		if !isTruthy(v) {
			continue
		}
		if strings.EqualFold(name, job.Source) {
			return true
		}
	}
	return false
}

func isTruthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.TrimSpace(strings.ToLower(val)) == "true"
	case float64:
		return val != 0
	default:
		return val != nil
	}
}
