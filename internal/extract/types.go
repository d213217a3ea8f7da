package extract

// Stage identifies one extraction strategy in the fixed-priority cascade.
type Stage string

const (
	StageSpatial   Stage = "spatial"
	StageFullText  Stage = "full-text-pattern"
	StageFragment  Stage = "fragment-pattern"
	StageLineParse Stage = "line-parse"
	StageFuzzyLine Stage = "fuzzy-line"
)

// Provenance tags and their flat confidences. These are coarse source tags
// attached to resolved fields, independent of the per-region fusion score.
const (
	SourceSpatial = "spatial"
	SourceRegex   = "regex"

	spatialConfidence = 0.95
	regexConfidence   = 0.85
)

// FieldMap maps a canonical field key to its single resolved value.
type FieldMap map[string]string

// FieldMeta describes how a field was resolved.
type FieldMeta struct {
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Metadata is the descriptive companion of a FieldMap. It never participates
// in picking between competing values; that tie-break happens during cascade
// execution.
type Metadata map[string]FieldMeta

// Resolution is one field's winning candidate during cascade execution.
type Resolution struct {
	Value string
	Stage Stage
}

// resolutions keeps insertion order so the later normalization pass can
// prefer earlier (higher-priority) entries deterministically.
type resolutions struct {
	order []string
	m     map[string]Resolution
}

func newResolutions() *resolutions {
	return &resolutions{m: make(map[string]Resolution)}
}

// add records a candidate only when the field is still unresolved. The
// cascade's ordering is the tie-break: earlier stages win.
func (r *resolutions) add(field, value string, stage Stage) {
	if field == "" || value == "" {
		return
	}
	if _, taken := r.m[field]; taken {
		return
	}
	r.order = append(r.order, field)
	r.m[field] = Resolution{Value: value, Stage: stage}
}

func (r *resolutions) has(field string) bool {
	_, ok := r.m[field]
	return ok
}

func metaFor(stage Stage) FieldMeta {
	if stage == StageSpatial {
		return FieldMeta{Confidence: spatialConfidence, Source: SourceSpatial}
	}
	return FieldMeta{Confidence: regexConfidence, Source: SourceRegex}
}
