package assessment

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeFeedback turns a parsed grading object of uncertain completeness
// into a GradingFeedback. Missing or mistyped fields default to zero values
// and empty lists; the score is clamped to [0, 100]. It never fails.
func NormalizeFeedback(raw map[string]any) GradingFeedback {
	return GradingFeedback{
		Score:            normalizeScore(raw["score"]),
		Feedback:         stringValue(raw["feedback"]),
		KeyPointsCovered: covered(raw["keyPointsCovered"]),
		KeyPointsMissing: missing(raw["keyPointsMissing"]),
		Misconceptions:   stringList(raw["misconceptions"]),
		Suggestions:      stringList(raw["suggestions"]),
	}
}

func normalizeScore(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return math.Min(math.Max(f, 0), 100)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringList keeps the string elements of a JSON array.
func stringList(v any) []string {
	out := []string{}
	items, _ := v.([]any)
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// pointFields reads {point, <detail>} objects, accepting bare strings as
// points without detail.
func pointFields(v any, detail string, add func(point, detail string)) {
	items, _ := v.([]any)
	for _, item := range items {
		switch p := item.(type) {
		case string:
			add(p, "")
		case map[string]any:
			point := stringValue(p["point"])
			if point == "" {
				continue
			}
			add(point, stringValue(p[detail]))
		}
	}
}

func covered(v any) []KeyPointCovered {
	out := []KeyPointCovered{}
	pointFields(v, "quality", func(point, quality string) {
		out = append(out, KeyPointCovered{Point: point, Quality: quality})
	})
	return out
}

func missing(v any) []KeyPointMissing {
	out := []KeyPointMissing{}
	pointFields(v, "importance", func(point, importance string) {
		out = append(out, KeyPointMissing{Point: point, Importance: importance})
	})
	return out
}
