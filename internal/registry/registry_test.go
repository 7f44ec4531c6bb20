package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/attest"
)

func TestChecklistStages(t *testing.T) {
	noop := func() *attest.Suite { return attest.New() }

	c := &Checklist{Name: "Sample", Summary: "A sample checklist."}
	c.AddStage("first", "First Stage", noop)
	c.AddStage("second", "Second Stage", noop)

	RegisterChecklist("sample", c)

	got, err := GetChecklist("sample")
	require.NoError(t, err)
	assert.Equal(t, "sample", got.Key)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, []string{"first", "second"}, got.StageOrder)
	assert.Contains(t, Keys(), "sample")

	stage, err := got.GetStage("second")
	require.NoError(t, err)
	assert.Equal(t, "Second Stage", stage.Name)

	_, err = got.GetStage("third")
	assert.ErrorContains(t, err, "first, second")

	assert.Equal(t, "Sample (sample)\nA sample checklist.\n  1. first - First Stage\n  2. second - Second Stage\n", got.Describe())
}

func TestGetChecklistMissing(t *testing.T) {
	_, err := GetChecklist("missing")
	assert.Error(t, err)
}
