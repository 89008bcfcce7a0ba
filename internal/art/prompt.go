package art

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/healthart/internal/models"
)

const (
	basePrompt    = "Create an abstract digital artwork representing health data with the following elements:"
	closingPrompt = "The overall composition should be harmonious yet dynamic, clearly reflecting the health status through abstract visual elements."
)

// Prompt is the text handed to the image generator.
type Prompt string

func (p Prompt) String() string { return string(p) }

// band selects a phrase when the metric is strictly above floor.
type band struct {
	floor  float64
	phrase string
}

// recoveryBands are checked in order; the last entry catches everything else.
var recoveryBands = []band{
	{80, "Dominant colors are vibrant greens and blues, representing high recovery (%s%% recovery score)."},
	{50, "Mix of warm yellows and cool blues, balancing moderate recovery (%s%% recovery score)."},
	{-1, "Subdued reds and greys dominate, indicating low recovery (%s%% recovery score)."},
}

// toggle picks above or below depending on whether the value exceeds threshold.
type toggle struct {
	threshold float64
	above     string
	below     string
}

func (t toggle) pick(v float64) string {
	if v > t.threshold {
		return t.above
	}
	return t.below
}

var (
	densityToggle = toggle{70, "Dense", "Sparse"}
	formToggle    = toggle{60, "circular", "angular"}
)

// metricClause describes one optional metric sentence.
type metricClause struct {
	name   string
	value  func(models.MetricSnapshot) *float64
	toggle toggle
	format string
}

// metricClauses are appended in this order when the metric is present.
var metricClauses = []metricClause{
	{
		name:   "sleep_quality",
		value:  func(s models.MetricSnapshot) *float64 { return s.SleepQuality },
		toggle: toggle{70, "smooth", "jagged"},
		format: "Represent sleep quality (%s%%) with %s wave-like patterns.",
	},
	{
		name:   "strain",
		value:  func(s models.MetricSnapshot) *float64 { return s.Strain },
		toggle: toggle{15, "bold", "subtle"},
		format: "Illustrate physical strain (%s/21) with %s textural elements.",
	},
	{
		name:   "hrv",
		value:  func(s models.MetricSnapshot) *float64 { return s.HRV },
		toggle: toggle{50, "intricate", "simple"},
		format: "Depict heart rate variability (%s ms) using %s fractal-like structures.",
	},
}

// BuildPrompt turns a snapshot into a prompt. It performs no I/O and
// identical snapshots always produce identical prompts.
func BuildPrompt(snap models.MetricSnapshot) Prompt {
	score := snap.RecoveryScore
	parts := []string{basePrompt, colorClause(score)}
	parts = append(parts, shapeClauses(score)...)

	for _, c := range metricClauses {
		if v := c.value(snap); v != nil {
			parts = append(parts, fmt.Sprintf(c.format, formatNumber(*v), c.toggle.pick(*v)))
		}
	}

	parts = append(parts, closingPrompt)
	return Prompt(strings.Join(parts, " "))
}

func colorClause(score float64) string {
	for _, b := range recoveryBands {
		if score > b.floor {
			return fmt.Sprintf(b.phrase, formatNumber(score))
		}
	}
	last := recoveryBands[len(recoveryBands)-1]
	return fmt.Sprintf(last.phrase, formatNumber(score))
}

func shapeClauses(score float64) []string {
	return []string{
		"Incorporate flowing, organic shapes to represent flexibility and adaptability.",
		"Use repeating geometric patterns, with their regularity affected by the recovery score.",
		densityToggle.pick(score) + " network of interconnected lines symbolizing bodily systems.",
		"Abstract " + formToggle.pick(score) + " forms representing energy levels.",
	}
}

// formatNumber prints whole numbers without a fraction and others with the shortest exact form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PresentMetrics lists the optional metrics reported in snap, in prompt order.
func PresentMetrics(snap models.MetricSnapshot) []string {
	var names []string
	for _, c := range metricClauses {
		if c.value(snap) != nil {
			names = append(names, c.name)
		}
	}
	return names
}
