package repository

import (
	"errors"
	"strings"

	"ae-triage-intake/internal/domain/entity"
	domainRepo "ae-triage-intake/internal/domain/repository"
)

var ErrComplaintNotFound = errors.New("complaint not found")

// complaintCatalog is the static list shown on the complaint stage.
var complaintCatalog = []entity.ComplaintDefinition{
	{Code: "chest_pain", Label: "Chest pain", Category: entity.CategoryCardiac, Hint: "ECG within 10 min", Common: true},
	{Code: "short_breath", Label: "Shortness of breath", Category: entity.CategoryRespiratory, Common: true},
	{Code: "palpitations", Label: "Palpitations", Category: entity.CategoryCardiac},
	{Code: "cough", Label: "Cough", Category: entity.CategoryRespiratory},
	{Code: "fever", Label: "Fever/rigors", Category: entity.CategoryOther, Common: true},
	{Code: "asthma", Label: "Asthma flare", Category: entity.CategoryRespiratory},
	{Code: "copd", Label: "COPD exacerbation", Category: entity.CategoryRespiratory},
	{Code: "stroke_symptoms", Label: "Stroke symptoms (FAST+)", Category: entity.CategoryNeuro, Common: true},
	{Code: "headache", Label: "Headache", Category: entity.CategoryNeuro},
	{Code: "seizure", Label: "Seizure", Category: entity.CategoryNeuro},
	{Code: "head_injury", Label: "Head injury", Category: entity.CategoryTrauma, Common: true},
	{Code: "fall", Label: "Fall", Category: entity.CategoryTrauma, Common: true},
	{Code: "fracture_suspected", Label: "Suspected fracture", Category: entity.CategoryTrauma, Common: true},
	{Code: "sprain_strain", Label: "Sprain/strain", Category: entity.CategoryTrauma},
	{Code: "limb_pain", Label: "Limb/leg pain", Category: entity.CategoryTrauma, Common: true},
	{Code: "laceration", Label: "Laceration", Category: entity.CategoryTrauma, Common: true},
	{Code: "abdo_pain", Label: "Abdominal pain", Category: entity.CategoryAbdoGI, Common: true},
	{Code: "vom_diarrhoea", Label: "Vomiting/diarrhoea", Category: entity.CategoryAbdoGI, Common: true},
	{Code: "gi_bleed", Label: "GI bleed (melaena/haematemesis)", Category: entity.CategoryAbdoGI},
	{Code: "uti", Label: "UTI symptoms", Category: entity.CategoryGU, Common: true},
	{Code: "flank_pain", Label: "Flank pain", Category: entity.CategoryGU},
	{Code: "preg_bleeding", Label: "Pregnancy bleeding", Category: entity.CategoryOBGyn},
	{Code: "reduced_fm", Label: "Reduced fetal movement", Category: entity.CategoryOBGyn},
	{Code: "sore_throat", Label: "Sore throat", Category: entity.CategoryENTEye},
	{Code: "ear_pain", Label: "Ear pain", Category: entity.CategoryENTEye},
	{Code: "eye_problem", Label: "Eye problem", Category: entity.CategoryENTEye},
	{Code: "rash", Label: "Rash", Category: entity.CategorySkin, Common: true},
	{Code: "cellulitis", Label: "Cellulitis/abscess", Category: entity.CategorySkin},
	{Code: "allergy", Label: "Allergic reaction", Category: entity.CategorySkin},
	{Code: "mental_health", Label: "Mental health crisis", Category: entity.CategoryPsychTox},
	{Code: "overdose", Label: "Overdose/poisoning", Category: entity.CategoryPsychTox},
	{Code: "postop_comp", Label: "Post-op complication", Category: entity.CategoryOther},
	{Code: "wound_issue", Label: "Wound issue", Category: entity.CategoryOther},
	{Code: "dehydration", Label: "Dehydration", Category: entity.CategoryOther},
	{Code: "covid", Label: "COVID / viral illness", Category: entity.CategoryOther},
	{Code: "other", Label: "Other", Category: entity.CategoryOther},
}

type complaintRepository struct {
	byCode map[string]int
}

func NewComplaintRepository() domainRepo.ComplaintRepository {
	byCode := make(map[string]int, len(complaintCatalog))
	for i, c := range complaintCatalog {
		byCode[c.Code] = i
	}
	return &complaintRepository{byCode: byCode}
}

func (r *complaintRepository) FindAll() []entity.ComplaintDefinition {
	out := make([]entity.ComplaintDefinition, len(complaintCatalog))
	copy(out, complaintCatalog)
	return out
}

func (r *complaintRepository) FindByCode(code string) (*entity.ComplaintDefinition, error) {
	i, ok := r.byCode[code]
	if !ok {
		return nil, ErrComplaintNotFound
	}
	def := complaintCatalog[i]
	return &def, nil
}

func (r *complaintRepository) FindCommon() []entity.ComplaintDefinition {
	var out []entity.ComplaintDefinition
	for _, c := range complaintCatalog {
		if c.Common {
			out = append(out, c)
		}
	}
	return out
}

// Filter narrows by category (unless "All" or empty) and then by a
// case-insensitive substring of the label.
func (r *complaintRepository) Filter(category entity.ComplaintCategory, query string) []entity.ComplaintDefinition {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []entity.ComplaintDefinition{}
	for _, c := range complaintCatalog {
		if category != "" && category != entity.CategoryAll && c.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Label), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}
