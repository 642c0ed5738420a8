package scheduler

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"trend-radar/internal/model"
	"trend-radar/internal/processor"
	"trend-radar/internal/scraper"
	"trend-radar/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Config 用于调度配置。Interval 既支持 Go duration（如 "2h"），
// 也支持 5 字段 cron 表达式（如 "0 */6 * * *"）。
type Config struct {
	Interval string `yaml:"interval" json:"interval"`
	Timeout  string `yaml:"timeout" json:"timeout"`
}

// Search 描述一次抓取任务的检索条件。Sources 为空表示抓取全部站点。
type Search struct {
	Keyword  string
	Location string
	Sources  []string
}

// Store 抽象存储接口，便于测试替换。
type Store interface {
	StoreJobs(ctx context.Context, jobs []model.Job) (storage.StoreResult, error)
	ListWatches(ctx context.Context) ([]model.Watch, error)
}

// Notifier 用于发送新增职位通知。
type Notifier interface {
	Notify(ctx context.Context, jobs []model.Job) error
}

// Scheduler 负责周期性抓取各站点并写入存储。
type Scheduler struct {
	scrapers  []scraper.Scraper
	store     Store
	processor processor.JobProcessor
	notif     Notifier
	searches  []Search
	interval  time.Duration
	cronSpec  string
	cron      *cronSchedule
	timeout   time.Duration
	running   atomic.Bool
	newTicker func(time.Duration) ticker
	now       func() time.Time
	logger    *log.Logger
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewScheduler 创建 Scheduler，解析配置的间隔与超时。
// searches 是配置里的默认检索条件，订阅的检索条件在每次运行时从存储读取。
func NewScheduler(scrapers []scraper.Scraper, s Store, proc processor.JobProcessor, n Notifier, searches []Search, cfg Config) *Scheduler {
	interval, cronCfg := parseSchedule(cfg.Interval)
	timeout := 60 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Scheduler{
		scrapers:  scrapers,
		store:     s,
		processor: proc,
		notif:     n,
		searches:  searches,
		interval:  interval,
		cronSpec:  cronCfg.spec,
		cron:      cronCfg.schedule,
		timeout:   timeout,
		newTicker: defaultTicker,
		now:       time.Now,
		logger:    log.New(os.Stdout, "[scheduler] ", log.LstdFlags),
	}
}

// Start 启动调度循环，直到上下文取消。
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.scrapers) == 0 || s.store == nil || s.processor == nil {
		return fmt.Errorf("scheduler missing dependencies")
	}

	g, ctx := errgroup.WithContext(ctx)

	if s.cron != nil {
		g.Go(func() error {
			return s.startCron(ctx)
		})
	} else {
		tick := s.newTicker(s.interval)
		ch := tick.C()

		g.Go(func() error {
			defer tick.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ch:
					if _, err := s.runOnce(ctx); err != nil {
						return err
					}
				drain:
					for {
						select {
						case <-ch:
							continue
						default:
							break drain
						}
					}
				}
			}
		})
	}

	return g.Wait()
}

// RunOnce 对外暴露单次抓取接口，便于手动刷新。
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	return s.runOnce(ctx)
}

func (s *Scheduler) runOnce(ctx context.Context) (int, error) {
	if s.running.Swap(true) {
		return 0, nil
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	searches, err := s.collectSearches(ctx)
	if err != nil {
		return 0, fmt.Errorf("collect searches: %w", err)
	}

	accepted := make([]model.Job, 0)
	for _, search := range searches {
		for _, sc := range s.scrapers {
			if !search.wantsSource(sc.Source()) {
				continue
			}

			rawJobs, err := sc.Scrape(ctx, search.Keyword, search.Location)
			if err != nil {
				// 单个站点失败不应拖垮整轮抓取。
				s.logger.Printf("scrape %s keyword=%q failed: %v", sc.Source(), search.Keyword, err)
				continue
			}

			for _, raw := range rawJobs {
				res, err := s.processor.Process(ctx, raw)
				if err != nil {
					return 0, fmt.Errorf("process job %q: %w", raw.URL, err)
				}
				if res.Outcome == processor.ResultAccepted && res.Job != nil {
					accepted = append(accepted, *res.Job)
				}
			}
		}
	}

	if len(accepted) == 0 {
		return 0, nil
	}

	res, err := s.store.StoreJobs(ctx, accepted)
	if err != nil {
		return 0, fmt.Errorf("store jobs: %w", err)
	}
	s.logger.Printf("run done: inserted=%d duplicates=%d errors=%d", res.Inserted, res.Duplicates, res.Errors)

	if s.notif != nil && len(res.NewJobs) > 0 {
		if err := s.notif.Notify(ctx, res.NewJobs); err != nil {
			return res.Inserted, fmt.Errorf("notify: %w", err)
		}
	}

	return res.Inserted, nil
}

// collectSearches 合并配置默认检索与订阅检索，按关键词加地区去重。
func (s *Scheduler) collectSearches(ctx context.Context) ([]Search, error) {
	watches, err := s.store.ListWatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}

	seen := make(map[string]struct{})
	out := make([]Search, 0, len(s.searches)+len(watches))

	add := func(search Search) {
		key := strings.ToLower(search.Keyword) + "\x00" + strings.ToLower(search.Location)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, search)
	}

	for _, search := range s.searches {
		add(search)
	}
	for _, w := range watches {
		sources := make([]string, 0, len(w.Sources))
		for name := range w.Sources {
			sources = append(sources, name)
		}
		add(Search{Keyword: w.Keyword, Location: w.Location, Sources: sources})
	}

	return out, nil
}

func (search Search) wantsSource(source string) bool {
	if len(search.Sources) == 0 {
		return true
	}
	for _, s := range search.Sources {
		if strings.EqualFold(s, source) {
			return true
		}
	}
	return false
}

func defaultTicker(d time.Duration) ticker {
	t := time.NewTicker(d)
	return tickerWrapper{t}
}

type tickerWrapper struct {
	*time.Ticker
}

func (t tickerWrapper) C() <-chan time.Time { return t.Ticker.C }
func (t tickerWrapper) Stop()               { t.Ticker.Stop() }

func (s *Scheduler) startCron(ctx context.Context) error {
	if s.cron == nil {
		return fmt.Errorf("cron schedule missing")
	}

	for {
		next, err := s.cron.next(s.now())
		if err != nil {
			return fmt.Errorf("compute next cron time: %w", err)
		}
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if _, err := s.runOnce(ctx); err != nil {
				return err
			}
		}
	}
}

type cronConfig struct {
	spec     string
	schedule *cronSchedule
}

func parseSchedule(value string) (time.Duration, cronConfig) {
	trimmed := strings.TrimSpace(value)
	if trimmed != "" {
		if d, err := time.ParseDuration(trimmed); err == nil && d > 0 {
			return d, cronConfig{}
		}
		schedule, err := parseCronSpec(trimmed)
		if err == nil {
			return 0, cronConfig{spec: trimmed, schedule: schedule}
		}
	}

	return 6 * time.Hour, cronConfig{}
}

type cronSchedule struct {
	minutes map[int]struct{}
	hours   map[int]struct{}
	doms    map[int]struct{}
	months  map[int]struct{}
	dows    map[int]struct{}
}

func parseCronSpec(spec string) (*cronSchedule, error) {
	parts := strings.Fields(spec)
	if len(parts) != 5 {
		return nil, fmt.Errorf("cron spec must have 5 fields")
	}

	minutes, err := parseCronField(parts[0], 0, 59)
	if err != nil {
		return nil, fmt.Errorf("minutes: %w", err)
	}
	hours, err := parseCronField(parts[1], 0, 23)
	if err != nil {
		return nil, fmt.Errorf("hours: %w", err)
	}
	doms, err := parseCronField(parts[2], 1, 31)
	if err != nil {
		return nil, fmt.Errorf("day-of-month: %w", err)
	}
	months, err := parseCronField(parts[3], 1, 12)
	if err != nil {
		return nil, fmt.Errorf("month: %w", err)
	}
	dows, err := parseCronField(parts[4], 0, 6)
	if err != nil {
		return nil, fmt.Errorf("day-of-week: %w", err)
	}

	return &cronSchedule{minutes: minutes, hours: hours, doms: doms, months: months, dows: dows}, nil
}

func parseCronField(expr string, min, max int) (map[int]struct{}, error) {
	result := make(map[int]struct{})
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty field")
	}
	parts := strings.Split(expr, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch {
		case part == "*":
			for i := min; i <= max; i++ {
				result[i] = struct{}{}
			}
		case strings.HasPrefix(part, "*/"):
			step, err := strconv.Atoi(strings.TrimPrefix(part, "*/"))
			if err != nil || step <= 0 {
				return nil, fmt.Errorf("invalid step %s", part)
			}
			for i := min; i <= max; i += step {
				result[i] = struct{}{}
			}
		default:
			v, err := strconv.Atoi(part)
			if err != nil || v < min || v > max {
				return nil, fmt.Errorf("invalid value %s", part)
			}
			result[v] = struct{}{}
		}
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no values parsed")
	}
	return result, nil
}

func (c *cronSchedule) matches(t time.Time) bool {
	if _, ok := c.minutes[t.Minute()]; !ok {
		return false
	}
	if _, ok := c.hours[t.Hour()]; !ok {
		return false
	}
	if _, ok := c.months[int(t.Month())]; !ok {
		return false
	}
	if _, ok := c.doms[t.Day()]; !ok {
		return false
	}
	if _, ok := c.dows[int(t.Weekday())]; !ok {
		return false
	}
	return true
}

func (c *cronSchedule) next(after time.Time) (time.Time, error) {
	start := after.Truncate(time.Minute).Add(time.Minute)
	for i := 0; i < 525600; i++ { // up to one year of minutes
		candidate := start.Add(time.Duration(i) * time.Minute)
		if c.matches(candidate) {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no matching time found")
}
