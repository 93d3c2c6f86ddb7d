package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rebeliceyang/lazyseg/internal/models"
)

// SampleProvider serves built-in demo tables generated from a fixed seed, so
// every process sees the same rows
type SampleProvider struct {
	once   sync.Once
	tables map[string]*sampleTable
}

type sampleTable struct {
	columns []string
	rows    []models.Record
}

var (
	firstNames = []string{"Ava", "Ben", "Chloe", "Dev", "Elena", "Farid", "Grace", "Hiro", "Isla", "Jonas", "Kira", "Liam", "Maya", "Noah", "Olga", "Priya", "Quinn", "Ravi", "Sofia", "Tomas"}
	lastNames  = []string{"Adams", "Brooks", "Chen", "Diaz", "Evans", "Fischer", "Garcia", "Hughes", "Ito", "Jensen", "Khan", "Lopez", "Moreau", "Nowak", "Okafor"}
	regions    = []string{"North", "South", "East", "West", "Central"}
	tiers      = []string{"bronze", "silver", "gold", "platinum"}
	channels   = []string{"web", "mobile", "store", "phone", "partner", "email", "social"}
	categories = []string{"apparel", "electronics", "grocery", "home", "beauty", "sports", "toys", "books"}
	campaigns  = []string{"spring-sale", "loyalty-boost", "winback-q2", "new-arrivals", "holiday-push"}
	noteWords  = []string{"prefers", "email", "weekend", "discounts", "premium", "returns", "contact", "evening", "bulk", "gift", "orders", "vip"}
)

// NewSampleProvider creates the provider; tables are generated on first use
func NewSampleProvider() *SampleProvider {
	return &SampleProvider{}
}

func (p *SampleProvider) init() {
	p.once.Do(func() {
		rng := rand.New(rand.NewPCG(20240601, 7))
		p.tables = map[string]*sampleTable{
			"customers":          buildCustomers(rng, 200),
			"transactions":       buildTransactions(rng, 500, 200),
			"campaign_responses": buildResponses(rng, 300, 200),
		}
	})
}

// Has reports whether table is a built-in sample
func (p *SampleProvider) Has(table string) bool {
	p.init()
	_, ok := p.tables[table]
	return ok
}

// Tables returns the sample table names, sorted
func (p *SampleProvider) Tables(ctx context.Context) ([]string, error) {
	p.init()
	names := make([]string, 0, len(p.tables))
	for name := range p.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Fetch returns up to limit rows of a sample table
func (p *SampleProvider) Fetch(ctx context.Context, table string, limit int) Result {
	p.init()
	t, ok := p.tables[table]
	if !ok {
		return Failure(fmt.Errorf("%w: %s", ErrUnknownTable, table))
	}

	rows := t.rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	// copy so callers cannot disturb the shared rows
	out := make([]models.Record, len(rows))
	for i, r := range rows {
		rec := make(models.Record, len(r))
		for k, v := range r {
			rec[k] = v
		}
		out[i] = rec
	}
	return Result{Success: true, Columns: t.columns, Data: out}
}

func buildCustomers(rng *rand.Rand, n int) *sampleTable {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	t := &sampleTable{
		columns: []string{"id", "name", "email", "age", "region", "tier", "is_subscribed", "signup_date", "lifetime_value", "notes"},
	}
	for i := 1; i <= n; i++ {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]

		var notes any = ""
		if rng.IntN(3) > 0 {
			words := make([]string, 3+rng.IntN(4))
			for j := range words {
				words[j] = noteWords[rng.IntN(len(noteWords))]
			}
			notes = strings.Join(words, " ")
		}

		var age any = 18 + rng.IntN(60)
		if rng.IntN(25) == 0 {
			age = nil
		}

		t.rows = append(t.rows, models.Record{
			"id":             i,
			"name":           first + " " + last,
			"email":          fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			"age":            age,
			"region":         regions[rng.IntN(len(regions))],
			"tier":           tiers[rng.IntN(len(tiers))],
			"is_subscribed":  rng.IntN(2) == 0,
			"signup_date":    base.AddDate(0, 0, rng.IntN(730)).Format("2006-01-02"),
			"lifetime_value": round2(rng.Float64() * 5000),
			"notes":          notes,
		})
	}
	return t
}

func buildTransactions(rng *rand.Rand, n, customers int) *sampleTable {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t := &sampleTable{
		columns: []string{"id", "customer_id", "amount", "channel", "category", "purchased_on", "refunded"},
	}
	for i := 1; i <= n; i++ {
		t.rows = append(t.rows, models.Record{
			"id":           i,
			"customer_id":  1 + rng.IntN(customers),
			"amount":       round2(5 + rng.Float64()*495),
			"channel":      channels[rng.IntN(len(channels))],
			"category":     categories[rng.IntN(len(categories))],
			"purchased_on": base.AddDate(0, 0, rng.IntN(365)).Format("2006-01-02"),
			"refunded":     rng.IntN(10) == 0,
		})
	}
	return t
}

func buildResponses(rng *rand.Rand, n, customers int) *sampleTable {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	t := &sampleTable{
		columns: []string{"id", "campaign", "customer_id", "responded", "response_date", "offer_code", "revenue"},
	}
	for i := 1; i <= n; i++ {
		responded := rng.IntN(3) == 0
		var date any = ""
		var revenue any = 0.0
		if responded {
			date = base.AddDate(0, 0, rng.IntN(120)).Format("2006-01-02")
			revenue = round2(rng.Float64() * 300)
		}
		t.rows = append(t.rows, models.Record{
			"id":            i,
			"campaign":      campaigns[rng.IntN(len(campaigns))],
			"customer_id":   1 + rng.IntN(customers),
			"responded":     responded,
			"response_date": date,
			"offer_code":    fmt.Sprintf("OFF-%04d", rng.IntN(10000)),
			"revenue":       revenue,
		})
	}
	return t
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
