package source

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadlist-tui/pkg/types"
)

var (
	firstNames = []string{"Ada", "Bela", "Chen", "Dara", "Emil", "Farah", "Goran", "Hana", "Ivo", "Jun", "Kira", "Lena", "Milo", "Nora", "Omar", "Pia"}
	lastNames  = []string{"Arendt", "Bauer", "Costa", "Dubois", "Eriksen", "Fischer", "Garcia", "Horvat", "Ito", "Jansen", "Kowalski", "Lindqvist", "Moreau", "Novak", "Okafor", "Petrov"}
	countries  = []string{"DE", "FR", "PL", "SE", "ES", "IT", "NL", "US", "JP", "BR"}
	tags       = []string{"newsletter", "trial", "pricing", "webinar", "returning", "partner"}

	leadNamespace = uuid.MustParse("6f1c2a8e-6c1b-4f3e-9a51-2b7d54c0e9aa")
)

// SyntheticConfig shapes a generated lead data set
type SyntheticConfig struct {
	Total   int           `json:"total"`
	Seed    uint64        `json:"seed"`
	Latency time.Duration `json:"latency"`
	// HideTotal withholds the total until the last page is served
	HideTotal bool `json:"hide_total"`
}

// Synthetic is an in-memory Fetcher over a deterministic lead data set
type Synthetic struct {
	config SyntheticConfig
	base   []types.Lead
	sorted map[types.SortKey][]types.Lead
	mutex  sync.Mutex
}

// NewSynthetic generates config.Total leads from config.Seed
func NewSynthetic(config SyntheticConfig) *Synthetic {
	if config.Total < 0 {
		config.Total = 0
	}
	return &Synthetic{
		config: config,
		base:   generateLeads(config.Total, config.Seed),
		sorted: make(map[types.SortKey][]types.Lead),
	}
}

// FetchPage serves a page of the data set in the requested order
func (s *Synthetic) FetchPage(ctx context.Context, req types.PageRequest) (types.Page, error) {
	if req.Offset < 0 || req.Limit < 0 {
		return types.Page{}, fmt.Errorf("invalid page request offset=%d limit=%d", req.Offset, req.Limit)
	}
	if s.config.Latency > 0 {
		timer := time.NewTimer(s.config.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return types.Page{}, ctx.Err()
		}
	}

	leads := s.ordered(req.Sort)
	start := min(req.Offset, len(leads))
	end := min(start+req.Limit, len(leads))

	page := types.Page{
		Items:  append([]types.Lead(nil), leads[start:end]...),
		Offset: req.Offset,
	}
	if !s.config.HideTotal || end == len(leads) {
		total := len(leads)
		page.Total = &total
	}
	return page, nil
}

// Total returns the size of the data set
func (s *Synthetic) Total() int {
	return len(s.base)
}

func (s *Synthetic) ordered(key types.SortKey) []types.Lead {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if leads, ok := s.sorted[key]; ok {
		return leads
	}
	leads := append([]types.Lead(nil), s.base...)
	sort.SliceStable(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		switch key {
		case types.SortByScore:
			return a.Score > b.Score
		case types.SortByLastVisit:
			return a.LastVisit.After(b.LastVisit)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
	s.sorted[key] = leads
	return leads
}

func generateLeads(n int, seed uint64) []types.Lead {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	leads := make([]types.Lead, n)
	for i := range leads {
		first := epoch.Add(time.Duration(rng.IntN(300*24)) * time.Hour)
		last := first.Add(time.Duration(rng.IntN(60*24)) * time.Hour)
		visits := 1 + rng.IntN(40)

		var leadTags []string
		for _, tag := range tags {
			if rng.IntN(4) == 0 {
				leadTags = append(leadTags, tag)
			}
		}

		leads[i] = types.Lead{
			ID:         uuid.NewSHA1(leadNamespace, []byte(fmt.Sprintf("%d/%d", seed, i))).String(),
			Name:       firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
			Score:      rng.IntN(101),
			FirstVisit: first,
			LastVisit:  last,
			Visitors:   1 + rng.IntN(5),
			Visits:     visits,
			Duration:   time.Duration(visits*(30+rng.IntN(600))) * time.Second,
			Country:    countries[rng.IntN(len(countries))],
			Tags:       leadTags,
		}
	}
	return leads
}
