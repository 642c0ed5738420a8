package watch

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"trend-radar/internal/model"

	"gorm.io/datatypes"
)

// Store 定义持久化接口。
type Store interface {
	CreateWatch(ctx context.Context, w *model.Watch) error
}

// Config 控制可订阅的站点集合。
type Config struct {
	AllowedSources []string `yaml:"allowed_sources" json:"allowed_sources"`
}

// Request 表示前端订阅请求。
type Request struct {
	Keyword  string   `json:"keyword"`
	Location string   `json:"location"`
	Sources  []string `json:"sources"`
	Email    string   `json:"email"`
}

// Service 负责验证与写入关键词订阅。
type Service struct {
	store   Store
	sources map[string]string
}

// NewService 创建订阅服务。
func NewService(store Store, cfg Config) *Service {
	lookup := make(map[string]string)
	for _, src := range cfg.AllowedSources {
		if trimmed := strings.TrimSpace(src); trimmed != "" {
			lookup[strings.ToLower(trimmed)] = trimmed
		}
	}
	if len(lookup) == 0 {
		lookup["linkedin"] = "LinkedIn"
		lookup["indeed"] = "Indeed"
	}
	return &Service{store: store, sources: lookup}
}

// Create 校验请求并写入数据库。
func (s *Service) Create(ctx context.Context, req Request) (model.Watch, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return model.Watch{}, fmt.Errorf("keyword required")
	}

	email := strings.TrimSpace(req.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return model.Watch{}, fmt.Errorf("invalid email: %w", err)
		}
	}

	sourceMap := datatypes.JSONMap{}
	for _, src := range req.Sources {
		key := strings.ToLower(strings.TrimSpace(src))
		if key == "" {
			continue
		}
		canonical, ok := s.sources[key]
		if !ok {
			return model.Watch{}, fmt.Errorf("unsupported source %s", src)
		}
		sourceMap[canonical] = true
	}

	w := model.Watch{
		Keyword:  keyword,
		Location: strings.TrimSpace(req.Location),
		Sources:  sourceMap,
		Email:    email,
	}
	if err := s.store.CreateWatch(ctx, &w); err != nil {
		return model.Watch{}, err
	}
	return w, nil
}
