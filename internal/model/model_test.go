package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaign_IsActive(t *testing.T) {
	c := &Campaign{
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	assert.False(t, c.IsActive(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)), "before the window")
	assert.True(t, c.IsActive(c.StartDate), "window is inclusive at the start")
	assert.True(t, c.IsActive(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, c.IsActive(c.EndDate), "window is inclusive at the end")
	assert.False(t, c.IsActive(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)), "after the window")
}

func TestCampaign_IsActive_PointWindow(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	c := &Campaign{StartDate: at, EndDate: at}

	assert.True(t, c.IsActive(at), "equal start and end form a single-instant window")
	assert.False(t, c.IsActive(at.Add(time.Second)))
}
