package service

import (
	"fmt"
	"strconv"
	"strings"

	"ae-triage-intake/internal/domain/entity"
)

// NormalizeTriageResult maps an untrusted backend object onto TriageResult.
// Missing or mistyped fields fall back to neutral values; nothing here
// returns an error and no diagnosis is invented.
func NormalizeTriageResult(raw map[string]interface{}) *entity.TriageResult {
	result := &entity.TriageResult{
		TriageCategory: entity.TriageStandard,
		RedFlags:       []string{},
		NextActions:    []entity.NextAction{},
		Explanation:    []string{entity.ExplanationModel},
		Source:         entity.TriageSourceModel,
	}

	if category := asText(raw["triage_category"]); category != "" {
		result.TriageCategory = entity.TriageCategory(category)
	}

	if list, ok := raw["red_flags"].([]interface{}); ok {
		for _, item := range list {
			result.RedFlags = append(result.RedFlags, asText(item))
		}
	}

	result.DiagPrimary = toDiagnosis(raw["primary_diagnosis"])
	result.DiagSecondary = toDiagnosis(raw["secondary_diagnosis"])

	if list, ok := raw["recommended_actions"].([]interface{}); ok {
		for i, item := range list {
			result.NextActions = append(result.NextActions, toNextAction(i, item))
		}
	}

	result.Summary = asText(raw["summary"])

	return result
}

func toDiagnosis(v interface{}) *entity.Diagnosis {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	return &entity.Diagnosis{
		Condition:  asText(obj["label"]),
		Confidence: asNumber(obj["probability_percent"]),
		Rationale:  asText(obj["rationale"]),
	}
}

// toNextAction maps one recommended_actions entry. Entries without a
// usable label are kept with an empty label and a positional ID.
func toNextAction(index int, v interface{}) entity.NextAction {
	var label string
	var timeCritical bool

	switch item := v.(type) {
	case map[string]interface{}:
		label = asText(item["label"])
		timeCritical = truthy(item["is_time_critical"])
	default:
		label = asText(item)
	}

	id := strings.TrimSpace(label)
	if id == "" {
		id = "action-" + strconv.Itoa(index+1)
	}

	action := entity.NextAction{ID: id, Label: label, Accepted: false}
	if timeCritical {
		action.Hint = entity.TimeCriticalHint
	}
	return action
}

// asText returns strings as-is and formats numbers and booleans; anything
// else becomes "".
func asText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil, map[string]interface{}, []interface{}:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asNumber(v interface{}) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

// truthy follows loose JSON truthiness: false, 0, "", and null are false.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
