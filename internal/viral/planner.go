package viral

import (
	"sort"
	"strings"

	"reelkit/viralservice/internal/domain"
)

const (
	// maxBroadQueryVariants caps the keyword combinations generated for a
	// broad niche so one request cannot explode into unbounded fan-out.
	maxBroadQueryVariants = 12
	// narrowKeywordCount is how many of the longest keywords a non-broad
	// niche joins into its single query.
	narrowKeywordCount = 3
)

// planQueries builds the ordered fan-out set for a request. The order is part
// of the pipeline's determinism contract: dedup keeps the first occurrence in
// plan order, so planning must be stable for identical inputs.
func (s *Service) planQueries(req domain.TrendingRequest, category domain.ResolvedCategory, adapters []Adapter) []domain.QueryDescriptor {
	pageSize := fetchPageSize(req.MaxResults)

	if req.ChannelIdentifier != "" {
		queries := make([]domain.QueryDescriptor, 0, len(adapters))
		for _, adapter := range adapters {
			queries = append(queries, domain.QueryDescriptor{
				Platform:   adapter.Platform(),
				Mode:       domain.ModeChannel,
				Identifier: req.ChannelIdentifier,
				Kind:       req.IdentifierKind,
				PageSize:   pageSize,
			})
		}
		return queries
	}

	// A niche category switches planning to keyword search entirely: trending
	// endpoints cannot be keyword-filtered.
	if category.Niche != nil {
		variants := keywordVariants(category.Niche)
		queries := make([]domain.QueryDescriptor, 0, len(adapters)*len(variants))
		for _, adapter := range adapters {
			for _, variant := range variants {
				queries = append(queries, domain.QueryDescriptor{
					Platform: adapter.Platform(),
					Mode:     domain.ModeKeyword,
					Keywords: []string{variant},
					PageSize: pageSize,
				})
			}
		}
		return queries
	}

	regions := req.Regions
	if len(regions) == 0 {
		regions = s.defaultRegions
	}
	queries := make([]domain.QueryDescriptor, 0, len(adapters)*len(regions))
	for _, adapter := range adapters {
		for _, region := range regions {
			queries = append(queries, domain.QueryDescriptor{
				Platform:   adapter.Platform(),
				Mode:       domain.ModeTrending,
				Region:     strings.ToUpper(strings.TrimSpace(region)),
				CategoryID: category.NativeID,
				PageSize:   pageSize,
			})
		}
	}
	return queries
}

// planFallbackQueries builds the one-shot expansion wave from the niche's
// deliberately generic fallback terms.
func (s *Service) planFallbackQueries(req domain.TrendingRequest, niche *domain.CategoryDefinition, adapters []Adapter) []domain.QueryDescriptor {
	terms := niche.FallbackKeywords
	if len(terms) == 0 {
		// Last resort: single words drawn from the primary keywords.
		terms = singleTerms(niche.Keywords)
	}
	pageSize := fetchPageSize(req.MaxResults)
	queries := make([]domain.QueryDescriptor, 0, len(adapters)*len(terms))
	for _, adapter := range adapters {
		for _, term := range terms {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			queries = append(queries, domain.QueryDescriptor{
				Platform: adapter.Platform(),
				Mode:     domain.ModeKeyword,
				Keywords: []string{term},
				PageSize: pageSize,
			})
		}
	}
	return queries
}

// keywordVariants derives the query strings for a niche. Broad niches get up
// to maxBroadQueryVariants distinct combinations (each curated phrase, then
// pairs of phrases); narrow niches get one query joining their longest
// keywords.
func keywordVariants(niche *domain.CategoryDefinition) []string {
	keywords := make([]string, 0, len(niche.Keywords))
	for _, kw := range niche.Keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return []string{niche.DisplayName}
	}

	if !niche.Broad {
		longest := append([]string(nil), keywords...)
		sort.SliceStable(longest, func(i, j int) bool {
			return len(longest[i]) > len(longest[j])
		})
		n := narrowKeywordCount
		if n > len(longest) {
			n = len(longest)
		}
		return []string{strings.Join(longest[:n], " ")}
	}

	variants := make([]string, 0, maxBroadQueryVariants)
	for _, kw := range keywords {
		if len(variants) >= maxBroadQueryVariants {
			return variants
		}
		variants = append(variants, kw)
	}
	for i := 0; i < len(keywords); i++ {
		for j := i + 1; j < len(keywords); j++ {
			if len(variants) >= maxBroadQueryVariants {
				return variants
			}
			variants = append(variants, keywords[i]+" "+keywords[j])
		}
	}
	return variants
}

func singleTerms(keywords []string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, kw := range keywords {
		for _, word := range strings.Fields(kw) {
			word = strings.ToLower(word)
			if len(word) < 4 {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			terms = append(terms, word)
		}
	}
	return terms
}

// fetchPageSize over-fetches relative to the requested limit so the filter
// pipeline has headroom, within provider-friendly bounds.
func fetchPageSize(maxResults int) int {
	size := maxResults * 2
	if size < 50 {
		size = 50
	}
	if size > 100 {
		size = 100
	}
	return size
}
