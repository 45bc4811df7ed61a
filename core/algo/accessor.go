package algo

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/huangsam/peerscore/schema"
)

// GetMetricValue resolves a metric key against a company. Keys with the
// synthetic prefix are derived from other fields; every other key is a
// dotted path into Company.Data. The result is nil for anything missing,
// non-numeric or non-finite, and nil must be read as "exclude" rather than zero.
func GetMetricValue(c schema.Company, key string) *float64 {
	if strings.HasPrefix(key, schema.CalcPrefix) {
		return calcMetric(c, key)
	}
	return lookupPath(c.Data, key)
}

// calcMetric derives one of the synthetic ratio metrics.
func calcMetric(c schema.Company, key string) *float64 {
	switch key {
	case schema.CalcFCFMargin:
		fcf := lookupPath(c.Data, schema.KeyFreeCashFlow)
		revenue := lookupPath(c.Data, schema.KeyRevenue)
		if fcf == nil || revenue == nil || *revenue == 0 {
			return nil
		}
		return finite(*fcf / *revenue * 100)

	case schema.CalcFCFEVYield:
		fcf := lookupPath(c.Data, schema.KeyFreeCashFlow)
		ev := lookupPath(c.Data, schema.KeyEnterpriseValue)
		if fcf == nil || ev == nil || *ev <= 0 {
			return nil
		}
		return finite(*fcf / *ev * 100)

	case schema.CalcNetDebtToEBITDA:
		ebitda := lookupPath(c.Data, schema.KeyEBITDA)
		if ebitda == nil || *ebitda == 0 {
			return nil
		}
		debt := valueOrZero(lookupPath(c.Data, schema.KeyDebt))
		cash := valueOrZero(lookupPath(c.Data, schema.KeyCash))
		return finite((debt - cash) / *ebitda)
	}
	return nil
}

// lookupPath walks a dotted path through nested maps.
func lookupPath(data map[string]any, path string) *float64 {
	if data == nil || path == "" {
		return nil
	}
	var current any = data
	for segment := range strings.SplitSeq(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil
			}
			current = next
		case map[any]any:
			next, ok := node[segment]
			if !ok {
				return nil
			}
			current = next
		default:
			return nil
		}
	}
	return toFloat(current)
}

// toFloat converts a numeric leaf into a finite float.
func toFloat(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
