// Package pipeline runs OCR text through classification, the matching parser
// and the normalizer.
package pipeline

import (
	"log/slog"

	"github.com/nukk-pain/wine-sub001/internal/classify"
	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/normalize"
	"github.com/nukk-pain/wine-sub001/internal/receipt"
	"github.com/nukk-pain/wine-sub001/internal/winelabel"
)

// ReviewThreshold is the classifier confidence under which a result is
// flagged for manual review
const ReviewThreshold = 0.6

// Refiner is a secondary extractor consulted when the label parser finds no name
type Refiner interface {
	Refine(text string) (map[string]any, error)
}

// Result is everything one run produced
type Result struct {
	Classification document.Classification  `json:"classification"`
	Type           document.Type            `json:"type"`
	WineLabel      *document.WineLabel      `json:"wineLabel,omitempty"`
	Receipt        *document.Receipt        `json:"receipt,omitempty"`
	Wines          []document.CanonicalWine `json:"wines"`
	Refined        bool                     `json:"refined"`
	NeedsReview    bool                     `json:"needsReview"`
}

// Pipeline wires the classifier, the parsers and an optional refiner
type Pipeline struct {
	classifier *classify.Classifier
	refiner    Refiner
}

// New creates a pipeline. A nil classifier uses the default thresholds;
// a nil refiner disables refinement.
func New(classifier *classify.Classifier, refiner Refiner) *Pipeline {
	if classifier == nil {
		classifier = classify.New(classify.DefaultConfig())
	}
	return &Pipeline{classifier: classifier, refiner: refiner}
}

// Run classifies text and parses it. A wine_label or receipt override
// replaces the classifier's decision; any other value trusts the classifier.
func (p *Pipeline) Run(text string, override document.Type) Result {
	cls := p.classifier.Classify(text)
	res := Result{
		Classification: cls,
		Type:           cls.Type,
		Wines:          []document.CanonicalWine{},
	}

	overridden := override == document.TypeWineLabel || override == document.TypeReceipt
	if overridden {
		res.Type = override
	}

	switch res.Type {
	case document.TypeWineLabel:
		p.runWineLabel(text, &res)
	case document.TypeReceipt:
		p.runReceipt(text, &res)
	default:
		res.NeedsReview = true
	}

	if !overridden && cls.Confidence < ReviewThreshold {
		res.NeedsReview = true
	}
	return res
}

func (p *Pipeline) runWineLabel(text string, res *Result) {
	label := winelabel.Parse(text)
	res.WineLabel = &label

	wine, err := normalize.Normalize(labelRecord(label))
	if err != nil {
		slog.Error("failed to normalize wine label", "error", err)
	}

	if wine.Name == "" && p.refiner != nil {
		if refined, ok := p.refine(text); ok {
			wine = wine.Merge(refined)
			res.Refined = true
		}
	}

	if wine.IsEmpty() {
		res.NeedsReview = true
		return
	}
	if wine.Name == "" {
		res.NeedsReview = true
	}
	res.Wines = append(res.Wines, wine)
}

func (p *Pipeline) refine(text string) (document.CanonicalWine, bool) {
	raw, err := p.refiner.Refine(text)
	if err != nil {
		slog.Warn("refinement failed", "error", err)
		return document.CanonicalWine{}, false
	}
	wine, err := normalize.Normalize(raw)
	if err != nil {
		slog.Warn("refinement returned an unusable record", "error", err)
		return document.CanonicalWine{}, false
	}
	return wine, true
}

func (p *Pipeline) runReceipt(text string, res *Result) {
	r := receipt.Parse(text)
	res.Receipt = &r

	for _, item := range r.Items {
		wine, err := normalize.Normalize(itemRecord(item, r))
		if err != nil {
			slog.Error("failed to normalize receipt item", "item", item.Name, "error", err)
			continue
		}
		if !wine.IsEmpty() {
			res.Wines = append(res.Wines, wine)
		}
	}
	if len(res.Wines) == 0 {
		res.NeedsReview = true
	}
}

// labelRecord hands the parsed label to the normalizer under its lower-case synonyms
func labelRecord(l document.WineLabel) map[string]any {
	rec := map[string]any{}
	put := func(k, v string) {
		if v != "" {
			rec[k] = v
		}
	}
	put("name", l.Name)
	put("region", l.Region)
	put("producer", l.Producer)
	put("appellation", l.Appellation)
	put("variety", l.Variety)
	put("volume", l.Volume)
	put("classification", l.Classification)
	if l.Vintage != 0 {
		rec["vintage"] = l.Vintage
	}
	if l.Alcohol != 0 {
		rec["alcohol"] = l.Alcohol
	}
	return rec
}

// itemRecord turns one receipt line into a raw row carrying the receipt's store and date
func itemRecord(item document.Item, r document.Receipt) map[string]any {
	rec := map[string]any{
		"name":     item.Name,
		"price":    item.Price,
		"quantity": item.Quantity,
	}
	if item.Vintage != 0 {
		rec["vintage"] = item.Vintage
	}
	if r.Store != "" {
		rec["store"] = r.Store
	}
	if r.Date != "" {
		rec["date"] = r.Date
	}
	return rec
}
