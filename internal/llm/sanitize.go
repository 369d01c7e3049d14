package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/contract-risk/constants"
	"github.com/joseph-ayodele/contract-risk/internal/entity"
	"github.com/joseph-ayodele/contract-risk/internal/risk"
)

// ErrNoJSONObject means the model output holds no {...} span at all.
var ErrNoJSONObject = errors.New("llm: no JSON object in response")

// ExtractJSONObject returns the span from the first '{' to the last '}' of a
// model response, dropping prose and code fences around it.
func ExtractJSONObject(content string) ([]byte, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONObject
	}
	return []byte(content[start : end+1]), nil
}

// SanitizeAnalysis decodes a recovered JSON object and repairs it into a
// ClauseAnalysis. Shape problems are fixed with defaults and listed in the
// returned repairs; only undecodable JSON is an error.
//   - clauses that are not objects are skipped
//   - type: unknown or missing -> "other"
//   - title: missing or blank -> "Risky clause"
//   - severity: lower-cased, missing or unknown -> "medium"
//   - texts: trimmed, missing -> ""
//
// With withScore the top-level fields are repaired too: risk_score is coerced
// to an integer and clamped, an invalid risk_level is derived from the score,
// and a missing summary gets a generic sentence in lang.
func SanitizeAnalysis(raw []byte, withScore bool, lang constants.Language) (ClauseAnalysis, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ClauseAnalysis{}, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	repairs := make([]string, 0, 4)
	out := ClauseAnalysis{Clauses: []entity.Clause{}}

	switch v := m["clauses"].(type) {
	case []any:
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				repairs = append(repairs, fmt.Sprintf("clauses[%d](not object)", i))
				continue
			}
			out.Clauses = append(out.Clauses, sanitizeClause(i, obj, &repairs))
		}
	case nil:
		repairs = append(repairs, "clauses(missing)")
	default:
		repairs = append(repairs, "clauses(type)")
	}

	if !withScore {
		return out, repairs, nil
	}

	score, ok := coerceScore(m["risk_score"])
	if !ok {
		score = risk.Score(out.Clauses)
		repairs = append(repairs, "risk_score(computed)")
	} else if c := risk.ClampScore(score); c != score {
		score = c
		repairs = append(repairs, "risk_score(clamped)")
	}

	levelStr, _ := m["risk_level"].(string)
	level, ok := constants.ParseRiskLevel(levelStr)
	if !ok {
		level = risk.Level(score)
		repairs = append(repairs, "risk_level(derived)")
	}

	summary, _ := m["summary"].(string)
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = risk.GenericModelSummary(lang)
		repairs = append(repairs, "summary(generic)")
	}

	out.Score = &score
	out.Level = &level
	out.Summary = &summary
	return out, repairs, nil
}

func sanitizeClause(i int, obj map[string]any, repairs *[]string) entity.Clause {
	field := func(key string) string {
		switch v := obj[key].(type) {
		case string:
			return strings.TrimSpace(v)
		case nil:
			return ""
		default:
			*repairs = append(*repairs, fmt.Sprintf("clauses[%d].%s(type)", i, key))
			return ""
		}
	}

	rawType := field("type")
	typ, known := constants.CanonicalClauseType(rawType)
	if !known && rawType != "" {
		*repairs = append(*repairs, fmt.Sprintf("clauses[%d].type(%s->other)", i, rawType))
	}

	title := field("title")
	if title == "" {
		title = entity.DefaultClauseTitle
	}

	rawSeverity := field("severity")
	severity, known := constants.ParseSeverity(rawSeverity)
	if !known && rawSeverity != "" {
		*repairs = append(*repairs, fmt.Sprintf("clauses[%d].severity(%s->medium)", i, rawSeverity))
	}

	return entity.Clause{
		Type:           typ,
		Title:          title,
		Severity:       severity,
		OriginalText:   field("original_text"),
		SimplifiedText: field("simplified_text"),
	}
}

// coerceScore accepts JSON numbers and numeric strings. Values far outside
// [0, 100] are bounded before conversion so the clamp still reports them.
func coerceScore(v any) (int, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	f = math.Max(-1, math.Min(f, risk.MaxScore+1))
	return int(math.Round(f)), true
}
