package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"trend-radar/internal/api"
	"trend-radar/internal/model"
	"trend-radar/internal/notifier"
	"trend-radar/internal/parser"
	"trend-radar/internal/processor"
	"trend-radar/internal/scheduler"
	"trend-radar/internal/scraper"
	"trend-radar/internal/storage"
	"trend-radar/internal/watch"
)

// AppConfig 应用配置。
type AppConfig struct {
	Server    ServerConfig         `yaml:"server"`
	Database  DatabaseConfig       `yaml:"database"`
	Scraper   ScraperConfig        `yaml:"scraper"`
	Searches  []SearchConfig       `yaml:"searches"`
	Processor processor.Config     `yaml:"processor"`
	Scheduler scheduler.Config     `yaml:"scheduler"`
	Watch     watch.Config         `yaml:"watch"`
	Email     notifier.EmailConfig `yaml:"email"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ScraperConfig struct {
	LinkedIn scraper.Config `yaml:"linkedin"`
	Indeed   scraper.Config `yaml:"indeed"`
}

type SearchConfig struct {
	Keyword  string `yaml:"keyword"`
	Location string `yaml:"location"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("load config error: %v", err)
		return
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	store, err := storage.NewStore(dbPath)
	if err != nil {
		log.Printf("init store error: %v", err)
		return
	}
	defer store.Close()

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(startupCtx); err != nil {
		startupCancel()
		log.Printf("store ping error: %v", err)
		return
	}
	startupCancel()

	client := &http.Client{Timeout: 15 * time.Second}
	scrapers := []scraper.Scraper{
		scraper.NewLinkedInScraper(cfg.Scraper.LinkedIn, client),
		scraper.NewIndeedScraper(cfg.Scraper.Indeed, client),
	}

	proc := processor.New(cfg.Processor)
	notif := buildNotifier(store, cfg.Email)

	searches := make([]scheduler.Search, 0, len(cfg.Searches))
	for _, s := range cfg.Searches {
		searches = append(searches, scheduler.Search{Keyword: s.Keyword, Location: s.Location})
	}
	if len(searches) == 0 {
		searches = append(searches, scheduler.Search{Keyword: "software engineer", Location: "Remote"})
	}

	sched := scheduler.NewScheduler(scrapers, store, proc, notif, searches, cfg.Scheduler)
	watchSvc := watch.NewService(store, cfg.Watch)

	handler := api.NewHandler(storeAdapter{store}, schedulerAdapter{sched}, watchSvc)

	addr := cfg.Server.Addr
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("scheduler stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("server error: %v", err)
	}
}

func loadConfig() (AppConfig, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// buildNotifier 根据邮件配置决定通知方式。
// 配置了 SMTP 时按订阅推送邮件，否则退化为日志输出。
func buildNotifier(store *storage.Store, cfg notifier.EmailConfig) scheduler.Notifier {
	fallback := notifier.NewLogNotifier(nil)
	if cfg.Host == "" || cfg.Port == 0 || cfg.From == "" {
		log.Printf("email notifier disabled: missing host/port/from")
		return fallback
	}
	return notifier.NewWatchNotifier(store, cfg, nil, fallback)
}

// 适配 API 所需接口。
type storeAdapter struct {
	store *storage.Store
}

func (s storeAdapter) FetchJobs(r *http.Request, keyword, source string) ([]model.Job, error) {
	return s.store.FetchJobs(r.Context(), storage.FetchOptions{Keyword: keyword, Source: source})
}

func (s storeAdapter) TopSkills(r *http.Request, keyword, source string, k int) ([]parser.SkillCount, error) {
	entries, err := s.store.SkillColumn(r.Context(), storage.FetchOptions{Keyword: keyword, Source: source})
	if err != nil {
		return nil, err
	}
	return parser.Aggregate(entries).TopK(k), nil
}

func (s storeAdapter) Ping(r *http.Request) error {
	return s.store.Ping(r.Context())
}

type schedulerAdapter struct {
	sched *scheduler.Scheduler
}

func (s schedulerAdapter) RunOnce(r *http.Request) (int, error) {
	return s.sched.RunOnce(context.Background())
}
