package processor

import (
	"context"
	"strings"

	"trend-radar/internal/model"
	"trend-radar/internal/parser"
)

// Config 描述归一化流水线配置。
type Config struct {
	SkillVocabulary []string `yaml:"skill_vocabulary" json:"skill_vocabulary"`
	SkillDelimiter  string   `yaml:"skill_delimiter" json:"skill_delimiter"`
}

// JobProcessor 描述归一化接口。
type JobProcessor interface {
	Process(ctx context.Context, raw model.RawJob) (Result, error)
}

// ResultOutcome 指示处理结果。
type ResultOutcome string

const (
	ResultAccepted ResultOutcome = "accepted"
	ResultRejected ResultOutcome = "rejected"
)

// Result 包含处理结果与输出记录。
type Result struct {
	Outcome ResultOutcome
	Job     *model.Job
	Reason  string
}

// Processor 把原始抓取记录归一化为可入库的职位记录：
// 补默认值、解析发布日期、提取技能词。规则是确定性的，
// 无法解析的输入降级为空字段，不会报错。
type Processor struct {
	delimiter string
	dates     *parser.DateNormalizer
	skills    *parser.SkillExtractor
}

// New 创建 Processor，词表缺省时使用内置词表。
func New(cfg Config) *Processor {
	vocab := cfg.SkillVocabulary
	if len(vocab) == 0 {
		vocab = parser.Vocabulary
	}
	delimiter := cfg.SkillDelimiter
	if delimiter == "" {
		delimiter = ", "
	}
	return &Processor{
		delimiter: delimiter,
		dates:     parser.NewDateNormalizer(),
		skills:    parser.NewSkillExtractorWithVocabulary(vocab),
	}
}

// Process 执行归一化。URL 缺失的记录直接拒绝，其余字段缺失补默认值。
func (p *Processor) Process(ctx context.Context, raw model.RawJob) (Result, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return Result{Outcome: ResultRejected, Reason: "missing url"}, nil
	}

	job := model.Job{
		Title:         defaultIfEmpty(raw.Title, "N/A"),
		Company:       defaultIfEmpty(raw.Company, "N/A"),
		Location:      defaultIfEmpty(raw.Location, "Unknown"),
		DatePosted:    strings.TrimSpace(raw.DateText),
		Source:        strings.TrimSpace(raw.Source),
		SearchKeyword: strings.TrimSpace(raw.SearchKeyword),
		URL:           url,
	}

	if parsed, ok := p.dates.Normalize(raw.DateText); ok {
		job.ParsedDate = &parsed
	}

	blob := strings.TrimSpace(raw.Title + "\n" + raw.Description)
	job.Skills = strings.Join(p.skills.Extract(blob), p.delimiter)

	return Result{Outcome: ResultAccepted, Job: &job}, nil
}

func defaultIfEmpty(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
