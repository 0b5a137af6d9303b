// Package normalize maps raw records with canonical, lower-cased or
// externally sourced keys onto a document.CanonicalWine.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/extract"
)

// ErrNotObject is returned when the input is not a key/value record
var ErrNotObject = errors.New("normalize: input is not an object")

// InputError describes a caller passing something other than a record
type InputError struct {
	Got string
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v (got %s)", e.Err, e.Got)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// maxAlcohol bounds a plausible alcohol percentage
const maxAlcohol = 80.0

// Normalize resolves raw into a canonical record.
//
// raw may be a map[string]any, a map[string]string, a JSON object as []byte
// or json.RawMessage, or a document.CanonicalWine. Values that are missing,
// empty or fail coercion are dropped. Variety lists are joined with ", ",
// which loses the list structure.
func Normalize(raw any) (document.CanonicalWine, error) {
	rec, err := toRecord(raw)
	if err != nil {
		return document.CanonicalWine{}, err
	}

	var c document.CanonicalWine
	c.Name, _ = resolve(rec, document.FieldName, asText)
	if v, ok := resolve(rec, document.FieldVintage, asVintage); ok {
		c.Vintage = v
	}
	if v, ok := resolve(rec, document.FieldRegionProducer, asText); ok {
		c.RegionProducer = v
	} else {
		c.RegionProducer = composeRegionProducer(rec)
	}
	c.Appellation, _ = resolve(rec, document.FieldAppellation, asText)
	c.Varietal, _ = resolve(rec, document.FieldVarietal, asTextList)
	c.Alcohol, _ = resolve(rec, document.FieldAlcohol, asAlcohol)
	c.Volume, _ = resolve(rec, document.FieldVolume, asVolume)
	c.Classification, _ = resolve(rec, document.FieldClassification, asText)
	c.Price, _ = resolve(rec, document.FieldPrice, asPrice)
	c.Quantity, _ = resolve(rec, document.FieldQuantity, asQuantity)
	c.Store, _ = resolve(rec, document.FieldStore, asText)
	c.PurchaseDate, _ = resolve(rec, document.FieldPurchaseDate, asDate)
	return c, nil
}

// toRecord accepts the supported record shapes
func toRecord(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return m, nil
	case json.RawMessage:
		return decodeObject(v)
	case []byte:
		return decodeObject(v)
	case document.CanonicalWine:
		return v.Fields(), nil
	case *document.CanonicalWine:
		if v == nil {
			return nil, &InputError{Got: "nil *document.CanonicalWine", Err: ErrNotObject}
		}
		return v.Fields(), nil
	}
	return nil, &InputError{Got: fmt.Sprintf("%T", raw), Err: ErrNotObject}
}

func decodeObject(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return nil, &InputError{Got: "non-object JSON", Err: ErrNotObject}
	}
	return m, nil
}

// resolve walks the synonyms of field in priority order and returns the first
// value coerce accepts. An exact key beats a case-insensitive match.
func resolve[T any](rec map[string]any, field string, coerce func(any) (T, bool)) (T, bool) {
	return lookup(rec, Synonyms[field], coerce)
}

func lookup[T any](rec map[string]any, keys []string, coerce func(any) (T, bool)) (T, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			if out, ok := coerce(v); ok {
				return out, true
			}
		}
	}
	recKeys := make([]string, 0, len(rec))
	for rk := range rec {
		recKeys = append(recKeys, rk)
	}
	sort.Strings(recKeys)
	for _, k := range keys {
		for _, rk := range recKeys {
			if rk == k || !strings.EqualFold(rk, k) {
				continue
			}
			if out, ok := coerce(rec[rk]); ok {
				return out, true
			}
		}
	}
	var zero T
	return zero, false
}

func composeRegionProducer(rec map[string]any) string {
	region, _ := lookup(rec, regionKeys, asText)
	producer, _ := lookup(rec, producerKeys, asText)
	switch {
	case region != "" && producer != "" && !strings.EqualFold(region, producer):
		return region + regionProducerSeparator + producer
	case region != "":
		return region
	default:
		return producer
	}
}

func asText(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// asTextList joins arrays with ", " and accepts plain strings
func asTextList(v any) (string, bool) {
	var parts []string
	switch t := v.(type) {
	case []any:
		for _, p := range t {
			if s, ok := asText(p); ok {
				parts = append(parts, s)
			}
		}
	case []string:
		for _, p := range t {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
	default:
		return asText(v)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

// asNumber reads numbers and numeric-looking strings
func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		f := float64(t)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return extract.ParseAmount(t)
	}
	return 0, false
}

func asVintage(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return extract.Vintage(s)
	}
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) || !extract.ValidVintage(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asAlcohol(v any) (float64, bool) {
	var pct float64
	if s, ok := v.(string); ok {
		p, found := extract.Alcohol(s)
		if !found {
			f, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
			if err != nil {
				return 0, false
			}
			p = f
		}
		pct = p
	} else {
		f, ok := asNumber(v)
		if !ok {
			return 0, false
		}
		pct = f
	}
	if pct <= 0 || pct > maxAlcohol {
		return 0, false
	}
	return pct, true
}

func asVolume(v any) (string, bool) {
	s, ok := asText(v)
	if !ok {
		return "", false
	}
	if vol, ok := extract.Volume(s); ok {
		return vol, true
	}
	return s, true
}

func asPrice(v any) (float64, bool) {
	f, ok := asNumber(v)
	if !ok || f < 0 {
		return 0, false
	}
	return f, f > 0
}

func asQuantity(v any) (int, bool) {
	f, ok := asNumber(v)
	if !ok || f < 1 || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asDate(v any) (string, bool) {
	s, ok := asText(v)
	if !ok {
		return "", false
	}
	return extract.NormalizeDate(s)
}
