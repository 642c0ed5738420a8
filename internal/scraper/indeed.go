package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"trend-radar/internal/model"

	"golang.org/x/net/html"
	"gorm.io/datatypes"
)

// IndeedScraper 抓取 Indeed 搜索结果页的职位卡片。
// 搜索页按 start 偏移分页，每页固定 10 条。
type IndeedScraper struct {
	baseURL string
	client  *http.Client
	cfg     Config
	logger  *log.Logger
}

// NewIndeedScraper 创建抓取器，baseURL 形如 https://www.indeed.com。
func NewIndeedScraper(cfg Config, client *http.Client) *IndeedScraper {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.indeed.com"
	}
	return &IndeedScraper{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		cfg:     cfg,
		logger:  log.New(os.Stdout, "[indeed] ", log.LstdFlags),
	}
}

// Source 返回站点标识。
func (s *IndeedScraper) Source() string { return "Indeed" }

// Scrape 按关键词与地区抓取职位卡片，同一次抓取内按 URL 去重。
func (s *IndeedScraper) Scrape(ctx context.Context, keyword, location string) ([]model.RawJob, error) {
	jobs := make([]model.RawJob, 0)
	seen := make(map[string]struct{})

	s.logger.Printf("start scrape: keyword=%q location=%q max_pages=%d", keyword, location, s.cfg.MaxPages)

	for page := 0; page < s.cfg.MaxPages; page++ {
		pageURL := s.buildPageURL(keyword, location, page*s.cfg.PageSize)

		doc, err := fetchDocument(ctx, s.client, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		cards := findAll(doc, byTagClass("div", "job_seen_beacon"))
		s.logger.Printf("page=%d cards=%d", page, len(cards))
		if len(cards) == 0 {
			break
		}

		for _, card := range cards {
			raw := s.parseCard(card, keyword, location)
			if raw.URL == "" {
				continue
			}
			if _, exists := seen[raw.URL]; exists {
				continue
			}
			seen[raw.URL] = struct{}{}
			jobs = append(jobs, raw)
		}
	}

	s.logger.Printf("scrape done: keyword=%q total=%d", keyword, len(jobs))
	return jobs, nil
}

func (s *IndeedScraper) buildPageURL(keyword, location string, start int) string {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("l", location)
	if start > 0 {
		params.Set("start", fmt.Sprintf("%d", start))
	}
	return s.baseURL + "/jobs?" + params.Encode()
}

func (s *IndeedScraper) parseCard(card *html.Node, keyword, location string) model.RawJob {
	title := textContent(findFirst(card, byTagClass("h2", "jobTitle")))
	company := textContent(findFirst(card, byTagClass("span", "companyName")))
	loc := textContent(findFirst(card, byTagClass("div", "companyLocation")))

	// 日期文本形如 "PostedPosted 3 days ago"，前缀需要剥掉。
	dateText := textContent(findFirst(card, byTagClass("span", "date")))
	dateText = strings.TrimSpace(strings.ReplaceAll(dateText, "Posted", ""))

	jobURL := ""
	if link := findFirst(card, byTagClass("a", "")); link != nil {
		if jk := attrVal(link, "data-jk"); jk != "" {
			jobURL = s.baseURL + "/viewjob?jk=" + jk
		} else if href := attrVal(link, "href"); href != "" {
			jobURL = s.baseURL + href
		}
	}

	snippet := textContent(findFirst(card, byTagClass("div", "job-snippet")))

	return model.RawJob{
		Title:         defaultIfEmpty(title, "N/A"),
		Company:       defaultIfEmpty(company, "N/A"),
		Location:      defaultIfEmpty(loc, "Unknown"),
		DateText:      dateText,
		Description:   strings.TrimSpace(strings.Join([]string{title, company, snippet}, " ")),
		URL:           jobURL,
		Source:        s.Source(),
		SearchKeyword: keyword,
		RawPayload: datatypes.JSONMap{
			"title":     title,
			"company":   company,
			"location":  loc,
			"date_text": dateText,
			"query":     keyword,
			"region":    location,
		},
	}
}
