// Package cellar stores processed labels and receipts and serves them over HTTP.
package cellar

import (
	"time"

	"github.com/nukk-pain/wine-sub001/internal/document"
	"github.com/nukk-pain/wine-sub001/internal/pipeline"
)

// Record is one processed document with everything the pipeline found in it
type Record struct {
	ID             string                   `json:"id"`
	Type           document.Type            `json:"type"`
	Classification document.Classification  `json:"classification"`
	WineLabel      *document.WineLabel      `json:"wineLabel,omitempty"`
	Receipt        *document.Receipt        `json:"receipt,omitempty"`
	Wines          []document.CanonicalWine `json:"wines"`
	Refined        bool                     `json:"refined"`
	NeedsReview    bool                     `json:"needsReview"`
	Text           string                   `json:"text"`
	Filename       string                   `json:"filename,omitempty"` // empty for text submissions
	ContentType    string                   `json:"content_type,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// apply copies a pipeline result onto the record, replacing earlier results
func (r *Record) apply(res pipeline.Result) {
	r.Type = res.Type
	r.Classification = res.Classification
	r.WineLabel = res.WineLabel
	r.Receipt = res.Receipt
	r.Wines = res.Wines
	if r.Wines == nil {
		r.Wines = []document.CanonicalWine{}
	}
	r.Refined = res.Refined
	r.NeedsReview = res.NeedsReview
}
