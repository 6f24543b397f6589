package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefectStatusValid(t *testing.T) {
	for _, status := range []DefectStatus{StatusCreated, StatusInProgress, StatusCompleted, StatusCancelled} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, DefectStatus("archived").Valid())
	assert.False(t, DefectStatus("").Valid())
}

func TestDefectStatusTerminal(t *testing.T) {
	assert.False(t, StatusCreated.Terminal())
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestComputeTotal(t *testing.T) {
	items := []LineItem{
		{Name: "Brick", Quantity: 100, Price: 50.5},
		{Name: "Cement", Quantity: 50, Price: 150},
	}
	assert.InDelta(t, 12550, ComputeTotal(items), 0.001)

	assert.Zero(t, ComputeTotal(nil))
	assert.Zero(t, ComputeTotal([]LineItem{}))
}
