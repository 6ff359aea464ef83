package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// SymptomFormType selects the structured question template for a complaint
type SymptomFormType string

const (
	FormChestPain  SymptomFormType = "CHEST_PAIN"
	FormSOB        SymptomFormType = "SOB"
	FormStroke     SymptomFormType = "STROKE"
	FormHeadInjury SymptomFormType = "HEAD_INJ"
	FormAbdo       SymptomFormType = "ABDO"
	FormUTI        SymptomFormType = "UTI"
	FormLimb       SymptomFormType = "LIMB"
	FormGeneric    SymptomFormType = "GEN"
)

// Code-level template overrides, checked before the category fallback.
var formTypeByCode = map[string]SymptomFormType{
	"chest_pain":         FormChestPain,
	"short_breath":       FormSOB,
	"asthma":             FormSOB,
	"copd":               FormSOB,
	"stroke_symptoms":    FormStroke,
	"head_injury":        FormHeadInjury,
	"abdo_pain":          FormAbdo,
	"vom_diarrhoea":      FormAbdo,
	"gi_bleed":           FormAbdo,
	"uti":                FormUTI,
	"flank_pain":         FormUTI,
	"limb_pain":          FormLimb,
	"fracture_suspected": FormLimb,
	"sprain_strain":      FormLimb,
	"fall":               FormLimb,
	"laceration":         FormLimb,
}

var formTypeByCategory = map[ComplaintCategory]SymptomFormType{
	CategoryCardiac:     FormChestPain,
	CategoryRespiratory: FormSOB,
	CategoryTrauma:      FormLimb,
	CategoryAbdoGI:      FormAbdo,
	CategoryGU:          FormUTI,
	CategoryNeuro:       FormStroke,
}

// ResolveFormType maps a complaint to its template: exact code, then
// category, then GEN.
func ResolveFormType(code string, category ComplaintCategory) SymptomFormType {
	if ft, ok := formTypeByCode[code]; ok {
		return ft
	}
	if ft, ok := formTypeByCategory[category]; ok {
		return ft
	}
	return FormGeneric
}

// FieldKind describes how a symptom field is answered
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldScore       FieldKind = "score"
	FieldDateTime    FieldKind = "datetime"
	FieldChoice      FieldKind = "choice"
	FieldMultiChoice FieldKind = "multi_choice"
	FieldCount       FieldKind = "count"
)

// LastKnownWellLayout is the datetime-local layout used for the lkw field.
const LastKnownWellLayout = "2006-01-02T15:04"

// FieldSpec is a single question on a symptom template
type FieldSpec struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
}

// Empty returns the value a freshly created template holds for this field.
func (f FieldSpec) Empty() interface{} {
	switch f.Kind {
	case FieldMultiChoice:
		return []string{}
	case FieldCount:
		return "0"
	default:
		return ""
	}
}

var (
	yesNo        = []string{"Yes", "No"}
	yesNoUnknown = []string{"Yes", "No", "Unknown"}
	yesNoNA      = []string{"Yes", "No", "N/A"}
	durations    = []string{"Now", "<1h", "1–4h", "4–12h", ">12h", "Unknown"}
	otherAssoc   = FieldSpec{Name: "assoc", Label: "Other associated symptoms", Kind: FieldText}
)

var templates = map[SymptomFormType][]FieldSpec{
	FormChestPain: {
		{Name: "pain_score", Label: "Pain score (0–10)", Kind: FieldScore},
		{Name: "radiation", Label: "Radiation", Kind: FieldMultiChoice, Options: []string{"Left arm", "Right arm", "Jaw", "Back", "None"}},
		{Name: "exertional", Label: "Exertional?", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "pleuritic", Label: "Pleuritic (worse on breath)?", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "diaphoresis", Label: "Diaphoresis (sweats)?", Kind: FieldChoice, Options: yesNo},
		{Name: "syncope", Label: "Syncope/near-syncope?", Kind: FieldChoice, Options: yesNo},
		{Name: "nausea", Label: "Nausea/vomiting?", Kind: FieldChoice, Options: yesNo},
		{Name: "duration", Label: "Duration", Kind: FieldChoice, Options: durations},
		otherAssoc,
	},
	FormSOB: {
		{Name: "sentences", Label: "Speaking in full sentences?", Kind: FieldChoice, Options: yesNo},
		{Name: "wheeze", Label: "Wheeze", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "cough", Label: "Cough", Kind: FieldChoice, Options: yesNo},
		{Name: "fever", Label: "Fever", Kind: FieldChoice, Options: yesNo},
		{Name: "chest_pain", Label: "Chest pain", Kind: FieldChoice, Options: yesNo},
		{Name: "home_o2", Label: "Home oxygen", Kind: FieldChoice, Options: yesNo},
		{Name: "duration", Label: "Duration", Kind: FieldChoice, Options: durations},
		otherAssoc,
	},
	FormStroke: {
		{Name: "fast_face", Label: "FAST – Face droop", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "fast_arm", Label: "FAST – Arm weakness", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "fast_speech", Label: "FAST – Speech changes", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "lkw", Label: "Last known well", Kind: FieldDateTime},
		{Name: "anticoagulated", Label: "Anticoagulated", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "seizure_onset", Label: "Seizure at onset", Kind: FieldChoice, Options: yesNoUnknown},
		otherAssoc,
	},
	FormHeadInjury: {
		{Name: "loc", Label: "Loss of consciousness", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "amnesia", Label: "Amnesia", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "vomits", Label: "Vomiting episodes", Kind: FieldCount, Options: []string{"0", "1", "≥2"}},
		{Name: "seizure", Label: "Seizure", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "anticoagulated", Label: "Anticoagulated", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "dangerous_mech", Label: "Dangerous mechanism", Kind: FieldChoice, Options: yesNoUnknown},
		otherAssoc,
	},
	FormAbdo: {
		{Name: "location", Label: "Location", Kind: FieldChoice, Options: []string{"RUQ", "RLQ", "LUQ", "LLQ", "Epigastric", "Suprapubic", "Diffuse"}},
		{Name: "guarding", Label: "Guarding/rigidity", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "vomiting", Label: "Vomiting", Kind: FieldChoice, Options: yesNo},
		{Name: "diarrhoea", Label: "Diarrhoea", Kind: FieldChoice, Options: yesNo},
		{Name: "urinary", Label: "Urinary symptoms", Kind: FieldChoice, Options: yesNo},
		{Name: "pregnancy_possible", Label: "Pregnancy possible", Kind: FieldChoice, Options: yesNoNA},
		otherAssoc,
	},
	FormUTI: {
		{Name: "dysuria", Label: "Dysuria (stinging/burning)", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "frequency", Label: "Frequency/urgency", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "flank_pain", Label: "Flank pain", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "fever", Label: "Fever", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "confusion", Label: "Confusion (elderly)", Kind: FieldChoice, Options: yesNoNA},
		otherAssoc,
	},
	FormLimb: {
		{Name: "side", Label: "Side", Kind: FieldChoice, Options: []string{"Left", "Right", "Bilateral", "Unknown"}},
		{Name: "site", Label: "Site", Kind: FieldChoice, Options: []string{"Hip", "Thigh", "Knee", "Leg", "Ankle", "Foot", "Shoulder", "Arm", "Wrist", "Hand"}},
		{Name: "deformity", Label: "Visible deformity", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "weight_bearing", Label: "Weight bearing possible", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "nv_compromise", Label: "Neurovascular compromise", Kind: FieldChoice, Options: yesNoUnknown},
		{Name: "open_wound", Label: "Open wound", Kind: FieldChoice, Options: yesNoUnknown},
		otherAssoc,
	},
	FormGeneric: {
		{Name: "severity", Label: "Severity", Kind: FieldChoice, Options: []string{"Mild", "Moderate", "Severe"}},
		{Name: "duration", Label: "Duration", Kind: FieldChoice, Options: durations},
		{Name: "assoc", Label: "Associated symptoms (short)", Kind: FieldText},
	},
}

// TemplateFields returns the ordered field specs for a form type. Unknown
// types get the generic template.
func TemplateFields(ft SymptomFormType) []FieldSpec {
	fields, ok := templates[ft]
	if !ok {
		fields = templates[FormGeneric]
	}
	out := make([]FieldSpec, len(fields))
	copy(out, fields)
	return out
}

// SymptomAnswers maps template field names to answers. Values are either a
// string or a []string (multi choice).
type SymptomAnswers map[string]interface{}

// DefaultSymptoms builds the empty answer set for a template. Every call
// returns a fresh, structurally equal value.
func DefaultSymptoms(ft SymptomFormType) SymptomAnswers {
	answers := SymptomAnswers{}
	for _, f := range TemplateFields(ft) {
		answers[f.Name] = f.Empty()
	}
	return answers
}

var (
	ErrUnknownSymptomField = errors.New("unknown symptom field for this form")
	ErrInvalidSymptomValue = errors.New("invalid symptom value")
)

// String returns the answer for key as a string, "" when absent or not a string.
func (a SymptomAnswers) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Strings returns a multi-choice answer
func (a SymptomAnswers) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Set validates value against the template field and stores it. Strings are
// accepted for single-valued kinds, string lists for multi choice. The empty
// value always clears a field.
func (a SymptomAnswers) Set(ft SymptomFormType, key string, value interface{}) error {
	var spec *FieldSpec
	for _, f := range TemplateFields(ft) {
		if f.Name == key {
			f := f
			spec = &f
			break
		}
	}
	if spec == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSymptomField, key)
	}

	if spec.Kind == FieldMultiChoice {
		list, ok := toStringList(value)
		if !ok {
			return fmt.Errorf("%w: %s expects a list", ErrInvalidSymptomValue, key)
		}
		seen := make(map[string]bool, len(list))
		clean := make([]string, 0, len(list))
		for _, item := range list {
			if !contains(spec.Options, item) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidSymptomValue, key, item)
			}
			if !seen[item] {
				seen[item] = true
				clean = append(clean, item)
			}
		}
		a[key] = clean
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: %s expects a string", ErrInvalidSymptomValue, key)
	}
	if s != "" {
		switch spec.Kind {
		case FieldChoice, FieldCount:
			if !contains(spec.Options, s) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidSymptomValue, key, s)
			}
		case FieldScore:
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil || n < 0 || n > 10 {
				return fmt.Errorf("%w: %s must be between 0 and 10", ErrInvalidSymptomValue, key)
			}
		case FieldDateTime:
			if _, err := time.Parse(LastKnownWellLayout, s); err != nil {
				return fmt.Errorf("%w: %s must use %s", ErrInvalidSymptomValue, key, LastKnownWellLayout)
			}
		}
	}
	a[key] = s
	return nil
}

// UnmarshalJSON keeps multi-choice answers as []string after a round trip.
func (a *SymptomAnswers) UnmarshalJSON(data []byte) error {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(SymptomAnswers, len(raw))
	for k, v := range raw {
		if list, ok := toStringList(v); ok {
			out[k] = list
			continue
		}
		out[k] = v
	}
	*a = out
	return nil
}

func toStringList(v interface{}) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
