package analyzer

import (
	"math"
	"time"

	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/values"
)

const (
	// CategoricalThreshold is the largest distinct-value count still treated as categorical
	CategoricalThreshold = 20

	// HistogramBuckets is the number of buckets for numeric and date histograms
	HistogramBuckets = 10
)

// AnalyzeDataset classifies every column of ds in column order
func AnalyzeDataset(ds *models.Dataset) []models.ColumnMetadata {
	if ds == nil {
		return nil
	}
	columns := make([]models.ColumnMetadata, 0, len(ds.Columns))
	for _, name := range ds.Columns {
		columns = append(columns, Analyze(name, ds.Values(name)))
	}
	return columns
}

// Analyze classifies a column from its values and computes its statistics.
// The first matching rule wins: date, numeric, boolean, categorical, free text.
func Analyze(name string, raw []any) models.ColumnMetadata {
	present := make([]any, 0, len(raw))
	for _, v := range raw {
		if !values.IsEmpty(v) {
			present = append(present, v)
		}
	}

	meta := models.ColumnMetadata{Name: name, Type: models.ColumnFreeText}
	if len(present) == 0 {
		return meta
	}

	if dates, ok := allDates(present); ok {
		meta.Type = models.ColumnDate
		meta.Date = dateStats(dates)
		return meta
	}

	if nums, ok := allNumbers(present); ok {
		meta.Type = models.ColumnNumeric
		meta.Numeric = numericStats(nums)
		return meta
	}

	if allBooleans(present) {
		meta.Type = models.ColumnBoolean
		meta.Categorical = categoricalStats(present)
		return meta
	}

	stats := categoricalStats(present)
	if len(stats.Unique) <= CategoricalThreshold {
		meta.Type = models.ColumnCategorical
		meta.Categorical = stats
	}
	return meta
}

func allDates(present []any) ([]time.Time, bool) {
	dates := make([]time.Time, 0, len(present))
	for _, v := range present {
		t, ok := values.ParseDate(v)
		if !ok {
			return nil, false
		}
		dates = append(dates, t)
	}
	return dates, true
}

func allNumbers(present []any) ([]float64, bool) {
	nums := make([]float64, 0, len(present))
	for _, v := range present {
		f, ok := values.Number(v)
		if !ok {
			return nil, false
		}
		nums = append(nums, f)
	}
	return nums, true
}

func allBooleans(present []any) bool {
	for _, v := range present {
		if !values.IsBoolean(v) {
			return false
		}
	}
	return true
}

func numericStats(nums []float64) *models.NumericStats {
	lo, hi := nums[0], nums[0]
	for _, n := range nums[1:] {
		lo = math.Min(lo, n)
		hi = math.Max(hi, n)
	}

	stats := &models.NumericStats{Min: lo, Max: hi}

	// Constant column: one bucket holding everything
	if hi == lo {
		stats.Histogram = []models.NumericBucket{{Start: lo, End: hi, Count: len(nums)}}
		return stats
	}

	size := (hi - lo) / HistogramBuckets
	buckets := make([]models.NumericBucket, HistogramBuckets)
	for i := range buckets {
		buckets[i].Start = lo + float64(i)*size
		buckets[i].End = lo + float64(i+1)*size
	}
	buckets[HistogramBuckets-1].End = hi

	for _, n := range nums {
		buckets[bucketIndex(int(math.Floor((n-lo)/size)))].Count++
	}

	stats.Histogram = buckets
	return stats
}

func dateStats(dates []time.Time) *models.DateStats {
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}

	stats := &models.DateStats{Min: values.FormatDate(lo), Max: values.FormatDate(hi)}

	dayRange := daysBetween(lo, hi)
	if dayRange == 0 {
		stats.Histogram = []models.DateBucket{{Start: stats.Min, End: stats.Max, Count: len(dates)}}
		return stats
	}

	bucketDays := int(math.Ceil(float64(dayRange) / HistogramBuckets))
	if bucketDays < 1 {
		bucketDays = 1
	}

	buckets := make([]models.DateBucket, HistogramBuckets)
	for i := range buckets {
		start := lo.AddDate(0, 0, i*bucketDays)
		buckets[i].Start = values.FormatDate(start)
		buckets[i].End = values.FormatDate(start.AddDate(0, 0, bucketDays))
	}

	for _, d := range dates {
		buckets[bucketIndex(daysBetween(lo, d)/bucketDays)].Count++
	}

	stats.Histogram = buckets
	return stats
}

func categoricalStats(present []any) *models.CategoricalStats {
	stats := &models.CategoricalStats{}
	index := make(map[string]int)
	for _, v := range present {
		key := models.DisplayValue(v)
		if i, ok := index[key]; ok {
			stats.Frequencies[i].Count++
			continue
		}
		index[key] = len(stats.Frequencies)
		stats.Unique = append(stats.Unique, key)
		stats.Frequencies = append(stats.Frequencies, models.ValueCount{Value: key, Count: 1})
	}
	return stats
}

// bucketIndex clamps i into the histogram so the maximum lands in the last bucket
func bucketIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= HistogramBuckets {
		return HistogramBuckets - 1
	}
	return i
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
