package service

import "post-dedup/config"

// Score 一次相似度计算的各项分数
type Score struct {
	Exact   bool
	Text    float64
	Keyword float64
	Point   float64
	Total   float64
}

// Scorer 组合正规化文本、关键词、要点三种信号
type Scorer struct {
	processor *ContentProcessor
	weights   config.WeightsConfig
}

func NewScorer(processor *ContentProcessor, weights *config.WeightsConfig) *Scorer {
	if weights == nil {
		weights = config.NewDefaultWeightsConfig()
	}
	return &Scorer{processor: processor, weights: *weights}
}

// features 一段文本参与比较的全部特征，候选文本只需提取一次
type features struct {
	normalized []rune
	keywords   map[string]struct{}
	points     map[string]struct{}
}

func (s *Scorer) extract(text string) *features {
	return &features{
		normalized: []rune(Normalize(text)),
		keywords:   toSet(s.processor.ExtractKeywords(text)),
		points:     toSet(s.processor.ExtractPoints(text)),
	}
}

// Similarity 返回 [0,1] 的相似度，参数顺序无关
func (s *Scorer) Similarity(a, b string) float64 {
	return s.Breakdown(a, b).Total
}

// Breakdown 返回各项分数
func (s *Scorer) Breakdown(a, b string) Score {
	return s.score(s.extract(a), s.extract(b))
}

func (s *Scorer) score(a, b *features) Score {
	// 正规化后完全相同直接返回，不再计算其它信号
	if string(a.normalized) == string(b.normalized) {
		return Score{Exact: true, Total: 1}
	}
	sc := Score{
		Text:    matchRatio(a.normalized, b.normalized),
		Keyword: Jaccard(a.keywords, b.keywords),
		Point:   Jaccard(a.points, b.points),
	}
	sc.Total = s.weights.Text*sc.Text + s.weights.Keyword*sc.Keyword + s.weights.Point*sc.Point
	return sc
}

// Jaccard |A∩B| / |A∪B|，两个集合都为空时为 0
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// MatchRatio 最长匹配块比例：2*M / (|a|+|b|)，M 为递归求得的匹配字符总数。
// 两个方向各算一次取较大值，保证对称。
func MatchRatio(a, b string) float64 {
	return matchRatio([]rune(a), []rune(b))
}

func matchRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	matched := matchedLength(a, b)
	if reverse := matchedLength(b, a); reverse > matched {
		matched = reverse
	}
	return 2 * float64(matched) / float64(total)
}

// matchedLength 找最长公共子串，再对左右两侧剩余部分重复，累加匹配长度
func matchedLength(a, b []rune) int {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	matched := 0
	for len(queue) > 0 {
		sp := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b2j, sp.alo, sp.ahi, sp.blo, sp.bhi)
		if k == 0 {
			continue
		}
		matched += k
		if sp.alo < i && sp.blo < j {
			queue = append(queue, span{sp.alo, i, sp.blo, j})
		}
		if i+k < sp.ahi && j+k < sp.bhi {
			queue = append(queue, span{i + k, sp.ahi, j + k, sp.bhi})
		}
	}
	return matched
}

// longestMatch 在 a[alo:ahi] 与 b[blo:bhi] 中找最长公共子串。
// 长度相同时取 a 中最早的，再取 b 中最早的。
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	newj2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len, newj2len = newj2len, j2len
		clear(newj2len)
	}
	return besti, bestj, bestsize
}
