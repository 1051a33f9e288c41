package submission

import (
	"math"

	"github.com/harrison/talentmap/internal/models"
)

// trait describes how one character strength is derived from its virtue.
type trait struct {
	virtue string
	weight float64
	offset int
}

// traits expands the six virtue scores into the 24 strengths the backend
// expects. Each strength is round(w*virtue + (1-w)*50 + offset), clamped to
// [0,100]. The mapping is deterministic but lossy: it adds no information
// beyond the virtue score and cannot be inverted.
var traits = map[string]trait{
	"creativity":     {"wisdom", 0.85, 2},
	"curiosity":      {"wisdom", 0.80, 1},
	"judgment":       {"wisdom", 0.75, -1},
	"loveOfLearning": {"wisdom", 0.80, 0},
	"perspective":    {"wisdom", 0.70, -2},

	"bravery":      {"courage", 0.85, 1},
	"perseverance": {"courage", 0.80, 2},
	"honesty":      {"courage", 0.75, 0},
	"zest":         {"courage", 0.70, -1},

	"love":               {"humanity", 0.80, 2},
	"kindness":           {"humanity", 0.85, 1},
	"socialIntelligence": {"humanity", 0.75, -2},

	"teamwork":   {"justice", 0.80, 1},
	"fairness":   {"justice", 0.85, 0},
	"leadership": {"justice", 0.75, -1},

	"forgiveness":    {"temperance", 0.75, 1},
	"humility":       {"temperance", 0.70, -2},
	"prudence":       {"temperance", 0.80, 0},
	"selfRegulation": {"temperance", 0.85, -1},

	"appreciationOfBeauty": {"transcendence", 0.75, 2},
	"gratitude":            {"transcendence", 0.85, 1},
	"hope":                 {"transcendence", 0.80, 0},
	"humor":                {"transcendence", 0.70, -1},
	"spirituality":         {"transcendence", 0.72, -3},
}

const neutralBaseline = 50

// Decompose derives the 24 strengths from the six virtue scores. Missing
// virtues are treated as the neutral baseline; Transform rejects them first.
func Decompose(virtues models.CategoryScores) VIAIS {
	var v VIAIS
	for _, s := range v.slots() {
		t := traits[s.name]
		parent, ok := virtues[t.virtue]
		if !ok {
			parent = neutralBaseline
		}
		*s.ptr = blend(parent, t)
	}
	return v
}

func blend(parent int, t trait) int {
	raw := t.weight*float64(parent) + (1-t.weight)*neutralBaseline + float64(t.offset)
	n := int(math.Round(raw))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
