package model

import (
	"time"

	"gorm.io/datatypes"
)

// Job 表示一条入库的职位记录。
// URL 是自然主键，唯一索引用于去重；Skills 为逗号连接的规范技能词；
// DatePosted 保留抓取到的原始日期文本，ParsedDate 为归一化后的
// 日历日期，解析失败时为 NULL。
type Job struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	Location      string     `json:"location"`
	Skills        string     `json:"skills"`
	DatePosted    string     `json:"date_posted"`
	ParsedDate    *time.Time `gorm:"index" json:"parsed_date"`
	Source        string     `json:"source"`
	SearchKeyword string     `gorm:"index" json:"search_keyword"`
	URL           string     `gorm:"uniqueIndex" json:"url"`
	ScrapedAt     time.Time  `gorm:"autoCreateTime" json:"scraped_at"`
}

// RawJob 表示抓取器输出的原始记录，尚未归一化。
// DateText 与 Description 为自由文本，由归一化流水线消费。
type RawJob struct {
	Title         string            `json:"title"`
	Company       string            `json:"company"`
	Location      string            `json:"location"`
	DateText      string            `json:"date_text"`
	Description   string            `json:"description"`
	URL           string            `json:"url"`
	Source        string            `json:"source"`
	SearchKeyword string            `json:"search_keyword"`
	RawPayload    datatypes.JSONMap `json:"raw_payload"`
}

// Watch 表示一条保存的搜索，调度器按其抓取，可选邮件通知。
type Watch struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Keyword   string            `json:"keyword"`
	Location  string            `json:"location"`
	Sources   datatypes.JSONMap `json:"sources"`
	Email     string            `json:"email"`
	CreatedAt time.Time         `json:"created_at"`
}
