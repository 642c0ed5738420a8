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

// LinkedInScraper 抓取 LinkedIn 访客搜索接口返回的职位卡片。
// 接口按 start 偏移分页，每页返回一组 base-search-card。
type LinkedInScraper struct {
	baseURL string
	client  *http.Client
	cfg     Config
	logger  *log.Logger
}

// NewLinkedInScraper 创建抓取器，baseURL 形如 https://www.linkedin.com。
func NewLinkedInScraper(cfg Config, client *http.Client) *LinkedInScraper {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 3
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.linkedin.com"
	}
	return &LinkedInScraper{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		cfg:     cfg,
		logger:  log.New(os.Stdout, "[linkedin] ", log.LstdFlags),
	}
}

// Source 返回站点标识。
func (s *LinkedInScraper) Source() string { return "LinkedIn" }

// Scrape 按关键词与地区抓取职位卡片，同一次抓取内按 URL 去重。
func (s *LinkedInScraper) Scrape(ctx context.Context, keyword, location string) ([]model.RawJob, error) {
	jobs := make([]model.RawJob, 0)
	seen := make(map[string]struct{})

	s.logger.Printf("start scrape: keyword=%q location=%q max_pages=%d", keyword, location, s.cfg.MaxPages)

	for page := 0; page < s.cfg.MaxPages; page++ {
		pageURL := s.buildPageURL(keyword, location, page*s.cfg.PageSize)

		doc, err := fetchDocument(ctx, s.client, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		cards := findAll(doc, byTagClass("div", "base-search-card"))
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

func (s *LinkedInScraper) buildPageURL(keyword, location string, start int) string {
	params := url.Values{}
	params.Set("keywords", keyword)
	params.Set("location", location)
	if start > 0 {
		params.Set("start", fmt.Sprintf("%d", start))
	}
	return s.baseURL + "/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?" + params.Encode()
}

func (s *LinkedInScraper) parseCard(card *html.Node, keyword, location string) model.RawJob {
	title := textContent(findFirst(card, byTagClass("h3", "base-search-card__title")))
	company := textContent(findFirst(card, byTagClass("h4", "base-search-card__subtitle")))
	loc := textContent(findFirst(card, byTagClass("span", "job-search-card__location")))

	timeNode := findFirst(card, byTagClass("time", ""))
	dateText := textContent(timeNode)
	if dateText == "" {
		dateText = attrVal(timeNode, "datetime")
	}

	link := findFirst(card, byTagClass("a", "base-card__full-link"))
	jobURL := strings.TrimSpace(attrVal(link, "href"))
	// 去掉跟踪参数，URL 作为去重键必须稳定。
	if i := strings.Index(jobURL, "?"); i >= 0 {
		jobURL = jobURL[:i]
	}

	snippet := textContent(findFirst(card, byTagClass("p", "base-search-card__metadata")))

	return model.RawJob{
		Title:         defaultIfEmpty(title, "N/A"),
		Company:       defaultIfEmpty(company, "N/A"),
		Location:      defaultIfEmpty(loc, "Unknown"),
		DateText:      strings.TrimSpace(dateText),
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
