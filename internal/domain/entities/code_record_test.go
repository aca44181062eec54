package entities_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sjwitcher/obd2-explorer/backend/internal/domain/entities"
)

func TestSummarize_EmptyDescription(t *testing.T) {
	assert.Equal(t, "No summary available.", entities.Summarize(""))
	assert.Equal(t, "No summary available.", entities.Summarize("   \n\t"))
}

func TestSummarize_TakesFirstThreeSentences(t *testing.T) {
	text := "Cylinder one misfire detected. The ECU saw irregular crankshaft speed. Common causes include ignition and fuel delivery. This sentence should be dropped."

	summary := entities.Summarize(text)

	assert.Equal(t, "Cylinder one misfire detected. The ECU saw irregular crankshaft speed. Common causes include ignition and fuel delivery.", summary)
}

func TestSummarize_ShortDescriptionReturnedWhole(t *testing.T) {
	assert.Equal(t, "Fuel trim lean bank one.", entities.Summarize("Fuel trim lean bank one."))
}

func TestSummarize_NoSentencePunctuation(t *testing.T) {
	assert.Equal(t, "misfire on cylinder one", entities.Summarize("misfire on cylinder one"))
}

func TestSummarize_CapsWidthWithEllipsis(t *testing.T) {
	long := strings.Repeat("word ", 150) + "end."

	summary := entities.Summarize(long)

	assert.LessOrEqual(t, len(summary), 500)
	assert.True(t, strings.HasSuffix(summary, "..."))
}
