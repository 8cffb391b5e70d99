package retire

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/yndnr/retire-go/internal/core/domain"
)

// WeightRule assigns a weight to requests whose path starts with Prefix.
type WeightRule struct {
	Prefix string `koanf:"prefix"`
	Weight int64  `koanf:"weight"`
}

// PathWeights builds a WeightFunc from prefix rules. The longest matching
// prefix wins; requests matching no rule weigh fallback.
func PathWeights(rules []WeightRule, fallback int64) (WeightFunc, error) {
	if fallback < 0 {
		return nil, domain.ErrInvalidWeight.WithDetails(fmt.Sprintf("fallback=%d", fallback))
	}

	sorted := make([]WeightRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Prefix == "" || !strings.HasPrefix(rule.Prefix, "/") {
			return nil, domain.ErrInvalidWeight.WithDetails(fmt.Sprintf("prefix %q must start with /", rule.Prefix))
		}
		if rule.Weight < 0 {
			return nil, domain.ErrInvalidWeight.WithDetails(fmt.Sprintf("prefix %q weight=%d", rule.Prefix, rule.Weight))
		}
		sorted = append(sorted, rule)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	return func(r *http.Request, _ int64) int64 {
		for _, rule := range sorted {
			if strings.HasPrefix(r.URL.Path, rule.Prefix) {
				return rule.Weight
			}
		}
		return fallback
	}, nil
}
