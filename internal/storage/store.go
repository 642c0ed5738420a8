package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"trend-radar/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnavailable 表示底层存储不可用。调用方（如面板启动自检）应视为致命错误。
var ErrUnavailable = errors.New("storage unavailable")

// Store 封装 SQLite 数据库访问，负责职位记录与搜索订阅的读写。
type Store struct {
	db     *gorm.DB
	logger *log.Logger
}

// StoreResult 汇总一次批量写入的结果。
// 重复 URL 与单条错误分别计数，均不会中断整批写入。
type StoreResult struct {
	Inserted   int
	Duplicates int
	Errors     int
	NewJobs    []model.Job
}

// FetchOptions 提供职位查询过滤条件。
type FetchOptions struct {
	Keyword string
	Source  string
}

// NewStore 创建 Store 并幂等迁移表结构与索引，可重复调用，不会破坏已有数据。
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrUnavailable, err)
	}

	if err := db.AutoMigrate(&model.Job{}, &model.Watch{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db, logger: log.New(os.Stdout, "[store] ", log.LstdFlags)}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Ping 检查存储是否可用，失败时包装 ErrUnavailable。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// StoreJobs 逐条写入职位记录，URL 为自然主键：
// - URL 为空的记录拒绝并计入 Errors
// - URL 冲突的记录按重复跳过计入 Duplicates，不覆盖已有行
// - 其余单条写入错误计入 Errors
// 单条失败不会中断整批。对同一批记录重复调用不会产生重复行。
func (s *Store) StoreJobs(ctx context.Context, jobs []model.Job) (StoreResult, error) {
	res := StoreResult{}
	for i := range jobs {
		job := jobs[i]
		if strings.TrimSpace(job.URL) == "" {
			s.logger.Printf("reject job without url: title=%q", job.Title)
			res.Errors++
			continue
		}
		job.ID = 0
		if job.ScrapedAt.IsZero() {
			job.ScrapedAt = time.Now()
		}

		tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoNothing: true,
		}).Create(&job)
		if tx.Error != nil {
			s.logger.Printf("insert job error: url=%s err=%v", job.URL, tx.Error)
			res.Errors++
			continue
		}
		if tx.RowsAffected == 0 {
			res.Duplicates++
			continue
		}
		res.Inserted++
		res.NewJobs = append(res.NewJobs, job)
	}
	return res, nil
}

// FetchJobs 返回按解析日期倒序的职位记录，解析失败的记录排在最后。
// Keyword 对 search_keyword 做大小写不敏感的子串过滤，Source 做大小写不敏感的精确匹配。
// 查询失败时包装 ErrUnavailable；空结果返回空切片。
func (s *Store) FetchJobs(ctx context.Context, opts FetchOptions) ([]model.Job, error) {
	query := s.db.WithContext(ctx).Model(&model.Job{}).
		Order("COALESCE(parsed_date, '1970-01-01') DESC, scraped_at DESC")
	query = applyJobFilters(query, opts)

	jobs := make([]model.Job, 0)
	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("%w: fetch jobs: %v", ErrUnavailable, err)
	}
	return jobs, nil
}

// SkillColumn 返回满足过滤条件的 skills 列原始值，供频次汇总使用。
func (s *Store) SkillColumn(ctx context.Context, opts FetchOptions) ([]string, error) {
	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), opts)

	rows := make([]string, 0)
	if err := query.Pluck("skills", &rows).Error; err != nil {
		return nil, fmt.Errorf("%w: pluck skills: %v", ErrUnavailable, err)
	}
	return rows, nil
}

// CountJobs 返回满足过滤条件的记录数量。
func (s *Store) CountJobs(ctx context.Context, opts FetchOptions) (int64, error) {
	var total int64
	query := applyJobFilters(s.db.WithContext(ctx).Model(&model.Job{}), opts)
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("%w: count jobs: %v", ErrUnavailable, err)
	}
	return total, nil
}

// CreateWatch 新增一条保存的搜索。
func (s *Store) CreateWatch(ctx context.Context, watch *model.Watch) error {
	if err := s.db.WithContext(ctx).Create(watch).Error; err != nil {
		return fmt.Errorf("create watch: %w", err)
	}
	return nil
}

// ListWatches 返回所有保存的搜索，按创建时间升序。
func (s *Store) ListWatches(ctx context.Context) ([]model.Watch, error) {
	var watches []model.Watch
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&watches).Error; err != nil {
		return nil, fmt.Errorf("list watches: %w", err)
	}
	return watches, nil
}

func applyJobFilters(db *gorm.DB, opts FetchOptions) *gorm.DB {
	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		db = db.Where("lower(search_keyword) LIKE ?", "%"+strings.ToLower(kw)+"%")
	}
	if src := strings.TrimSpace(opts.Source); src != "" {
		db = db.Where("lower(source) = ?", strings.ToLower(src))
	}
	return db
}
