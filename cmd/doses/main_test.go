package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxdose/dose-engine/drug"
	"github.com/rxdose/dose-engine/fraction"
	"github.com/rxdose/dose-engine/generic"
)

func TestPrintDue(t *testing.T) {
	d := drug.New("Aspirin")
	require.NoError(t, d.SetDose(drug.Morning, fraction.MustNew(1, 2)))
	require.NoError(t, d.SetDose(drug.Night, fraction.MustNew(3, 2)))

	var buf bytes.Buffer
	require.NoError(t, printDue(&buf, generic.NewTimePoint(2011, time.September, 7), []*drug.Drug{d}))

	out := buf.String()
	assert.Contains(t, out, "2011-09-07 (Wednesday)")
	assert.Contains(t, out, "Aspirin")
	assert.Contains(t, out, "1/2")
	assert.Contains(t, out, "1 1/2")
}

func TestPrintSupply(t *testing.T) {
	tracked := drug.New("Tracked")
	require.NoError(t, tracked.SetDose(drug.Morning, fraction.FromInt(1)))
	require.NoError(t, tracked.SetRefillSize(30))
	supply := fraction.FromInt(3)
	require.NoError(t, tracked.SetCurrentSupply(&supply))

	paused := drug.New("Paused")
	paused.SetActive(false)

	var buf bytes.Buffer
	require.NoError(t, printSupply(&buf, []*drug.Drug{tracked, paused}, 7))

	out := buf.String()
	assert.Contains(t, out, "Tracked")
	assert.Contains(t, out, "3.0")
	assert.Contains(t, out, "true")
	assert.NotContains(t, out, "Paused")
}
