package parser

import (
	"regexp"
	"sort"
	"strings"
)

// Vocabulary 为技能匹配的固定词表，全部小写，含多词短语、符号词与短缩写。
var Vocabulary = []string{
	"python", "java", "c++", "c#", "javascript", "typescript", "html", "css", "sql", "nosql", "mongodb", "postgresql", "mysql",
	"react", "angular", "vue", "node.js", "express.js", "next.js", "reactjs", "vuejs", "angularjs",
	"django", "flask", "spring", "spring boot", ".net", "ruby on rails", "asp.net",
	"aws", "azure", "gcp", "docker", "kubernetes", "k8s", "terraform", "ansible", "ci/cd", "jenkins", "gitlab ci", "github actions",
	"machine learning", "ml", "deep learning", "dl", "data science", "data analysis", "artificial intelligence", "ai", "nlp", "computer vision",
	"pandas", "numpy", "scipy", "scikit-learn", "sklearn", "tensorflow", "keras", "pytorch", "opencv",
	"agile", "scrum", "kanban", "git", "github", "jira", "rest", "api", "graphql", "microservices", "restful apis",
	"big data", "hadoop", "spark", "kafka", "data warehousing", "etl", "data pipelines", "airflow",
	"cybersecurity", "information security", "penetration testing", "linux", "unix", "bash", "shell scripting",
	"devops", "sre", "ui/ux", "figma", "adobe xd", "sketch", "swift", "kotlin", "php", "laravel", "go", "golang", "rust", "scala",
	"power bi", "tableau", "excel", "communication", "problem solving", "teamwork", "leadership", "project management",
	"data visualization", "r", "statistics", "algorithms", "data structures", "oop", "object-oriented programming",
	"cloud computing", "serverless", "selenium", "beautifulsoup", "api development",
}

// canonicalSpelling 把匹配到的原始词映射为统一写法，未列出的词保持原样。
var canonicalSpelling = map[string]string{
	"node.js":    "nodejs",
	"react.js":   "reactjs",
	"vue.js":     "vuejs",
	"express.js": "expressjs",
	"next.js":    "nextjs",
}

// plainToken 仅含字母数字与空格的词可以安全使用单词边界匹配。
var plainToken = regexp.MustCompile(`^[a-z0-9 ]+$`)

type skillMatcher struct {
	token string
	re    *regexp.Regexp // nil 时退化为子串匹配
}

// SkillExtractor 按固定词表从自由文本中提取技能。
// 普通词用单词边界匹配，避免 "go" 命中 "going"；
// 含符号的词（".net"、"c++"、"ui/ux"）用子串匹配，边界在标点附近不可靠。
type SkillExtractor struct {
	matchers []skillMatcher
}

// NewSkillExtractor 使用内置词表创建提取器。
func NewSkillExtractor() *SkillExtractor {
	return NewSkillExtractorWithVocabulary(Vocabulary)
}

// NewSkillExtractorWithVocabulary 使用自定义词表创建提取器，词表会去重并转小写。
func NewSkillExtractorWithVocabulary(vocab []string) *SkillExtractor {
	seen := make(map[string]struct{}, len(vocab))
	matchers := make([]skillMatcher, 0, len(vocab))
	for _, raw := range vocab {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}

		m := skillMatcher{token: token}
		if plainToken.MatchString(token) {
			// 编译失败时保持 re 为 nil，该词退化为子串匹配，不影响其余词。
			if re, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`); err == nil {
				m.re = re
			}
		}
		matchers = append(matchers, m)
	}
	return &SkillExtractor{matchers: matchers}
}

// Extract 返回去重且按字典序排序的规范技能词。
// 空文本或无命中返回空切片，结果对同一输入恒定。
func (e *SkillExtractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return []string{}
	}

	found := make(map[string]struct{})
	for _, m := range e.matchers {
		var matched bool
		if m.re != nil {
			matched = m.re.MatchString(lower)
		} else {
			matched = strings.Contains(lower, m.token)
		}
		if !matched {
			continue
		}
		token := m.token
		if canonical, ok := canonicalSpelling[token]; ok {
			token = canonical
		}
		found[token] = struct{}{}
	}

	out := make([]string, 0, len(found))
	for token := range found {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}
