package service

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"post-dedup/config"
	"post-dedup/pkg/model"

	"github.com/pkg/errors"
)

// hashtagRegex # 后接字母、数字或下划线，任意文字
var hashtagRegex = regexp.MustCompile(`#[\p{L}\p{N}_]+`)

// sentenceTerminators 句末标点，保留在句子末尾
const sentenceTerminators = "。！？!?"

// ContentProcessor 负责正规化、指纹以及关键词/要点提取。
// 词表在构造时编译，之后只读，可并发使用。
type ContentProcessor struct {
	categories    []keywordCategory
	bulletRegexes []*regexp.Regexp
	salienceTerms []string
}

type keywordCategory struct {
	name    string
	pattern *regexp.Regexp
}

func NewContentProcessor(vocab *config.VocabularyConfig) (*ContentProcessor, error) {
	if vocab == nil {
		vocab = config.NewDefaultVocabularyConfig()
	}
	p := &ContentProcessor{
		salienceTerms: make([]string, 0, len(vocab.SalienceTerms)),
	}

	// 分类按名字排序编译，保证结果与 map 遍历顺序无关
	for _, name := range vocab.CategoryNames() {
		patterns := vocab.Categories[name]
		if len(patterns) == 0 {
			continue
		}
		parts := make([]string, 0, len(patterns))
		for _, pattern := range patterns {
			parts = append(parts, "(?:"+pattern+")")
		}
		re, err := regexp.Compile(`(?i)` + strings.Join(parts, "|"))
		if err != nil {
			return nil, errors.Wrapf(err, "编译词表分类 %s 失败", name)
		}
		p.categories = append(p.categories, keywordCategory{name: name, pattern: re})
	}

	for _, marker := range vocab.BulletMarkers {
		if marker == "" {
			continue
		}
		p.bulletRegexes = append(p.bulletRegexes, regexp.MustCompile(regexp.QuoteMeta(marker)+`\s*([^\n]+)`))
	}
	for _, term := range vocab.SalienceTerms {
		if term != "" {
			p.salienceTerms = append(p.salienceTerms, term)
		}
	}
	return p, nil
}

// Normalize 生成用于比较的正规化文本：
// 去掉 #标签，转小写，只保留数字、拉丁字母、平假名、片假名和汉字（空白、换行、标点、表情全部去掉）。
// 幂等：Normalize(Normalize(x)) == Normalize(x)
func Normalize(text string) string {
	text = hashtagRegex.ReplaceAllString(text, "")
	text = strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	switch {
	case unicode.IsDigit(r):
		return true
	case unicode.Is(unicode.Latin, r):
		return true
	case r >= 0x3040 && r <= 0x309F: // 平假名
		return true
	case r >= 0x30A0 && r <= 0x30FF: // 片假名
		return true
	case r >= 0x4E00 && r <= 0x9FAF: // 汉字
		return true
	}
	return false
}

// Fingerprint 正规化文本的 MD5（十六进制）
func Fingerprint(text string) string {
	return hashNormalized(Normalize(text))
}

func hashNormalized(normalized string) string {
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ExtractKeywords 匹配所有分类的词表，合并去重（不区分大小写），按字典序返回
func (p *ContentProcessor) ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	for _, c := range p.categories {
		for _, m := range c.pattern.FindAllString(text, -1) {
			seen[strings.ToLower(m)] = struct{}{}
		}
	}
	keywords := make([]string, 0, len(seen))
	for k := range seen {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return keywords
}

// ExtractPoints 先按符号顺序取出要点行，再取包含重点词的句子。不去重。
func (p *ContentProcessor) ExtractPoints(text string) []string {
	points := make([]string, 0)
	for _, re := range p.bulletRegexes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if point := strings.TrimSpace(m[1]); point != "" {
				points = append(points, point)
			}
		}
	}
	for _, sentence := range splitSentences(text) {
		if p.isSalient(sentence) {
			points = append(points, sentence)
		}
	}
	return points
}

func (p *ContentProcessor) isSalient(sentence string) bool {
	for _, term := range p.salienceTerms {
		if strings.Contains(sentence, term) {
			return true
		}
	}
	return false
}

// splitSentences 按句末标点和换行切分，去掉首尾空白与空句
func splitSentences(text string) []string {
	sentences := make([]string, 0)
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
		cur.Reset()
	}
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			flush()
		case strings.ContainsRune(sentenceTerminators, r):
			cur.WriteRune(r)
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return sentences
}

// NewRecord 根据原文生成一条待保存的记录，ID 和 CreatedAt 由存储层填写
func (p *ContentProcessor) NewRecord(content, topic, postType, day string) *model.PostRecord {
	normalized := Normalize(content)
	return &model.PostRecord{
		Content:           content,
		ContentHash:       hashNormalized(normalized),
		NormalizedContent: normalized,
		Topic:             topic,
		PostType:          postType,
		Day:               day,
		CharCount:         model.CountChars(content),
		Keywords:          model.StringList(p.ExtractKeywords(content)),
		MainPoints:        model.StringList(p.ExtractPoints(content)),
	}
}
