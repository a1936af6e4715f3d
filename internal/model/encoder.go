package model

import "sort"

// LabelEncoder maps categorical values to the numeric codes the models were
// trained against. Codes are assigned by sorted class order, so the mapping
// is stable across processes as long as the vocabulary is. The encoder is
// frozen at construction; request data never changes it.
type LabelEncoder struct {
	classes []string
	codes   map[string]float64
}

// NewLabelEncoder builds an encoder over the given classes. Duplicates are
// collapsed.
func NewLabelEncoder(classes []string) *LabelEncoder {
	uniq := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		uniq[c] = struct{}{}
	}
	sorted := make([]string, 0, len(uniq))
	for c := range uniq {
		sorted = append(sorted, c)
	}
	sort.Strings(sorted)
	codes := make(map[string]float64, len(sorted))
	for i, c := range sorted {
		codes[c] = float64(i)
	}
	return &LabelEncoder{classes: sorted, codes: codes}
}

// Encode returns the numeric code for v and whether v is a known class.
func (e *LabelEncoder) Encode(v string) (float64, bool) {
	code, ok := e.codes[v]
	return code, ok
}

// Classes returns the sorted vocabulary (a copy).
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
