package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordSink struct {
	loads     int
	downloads int
	panels    int
	err       error
}

func (r *recordSink) RecordLoad(LoadEvent) error {
	r.loads++
	return r.err
}

func (r *recordSink) RecordDownload(DownloadEvent) error {
	r.downloads++
	return r.err
}

func (r *recordSink) RecordPanel(PanelEvent) error {
	r.panels++
	return r.err
}

// loadOnly implements only the base interface.
type loadOnly struct{ loads int }

func (l *loadOnly) RecordLoad(LoadEvent) error {
	l.loads++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	base := &loadOnly{}
	m := NewMultiSink(s1, s2, base)

	require.NoError(t, m.RecordLoad(LoadEvent{Region: "NP", Rows: 3}))
	require.NoError(t, m.RecordDownload(DownloadEvent{Region: "NP", Success: true}))
	require.NoError(t, m.RecordPanel(PanelEvent{Regions: []string{"NP"}}))

	assert.Equal(t, 1, s1.loads)
	assert.Equal(t, 1, s2.downloads)
	assert.Equal(t, 1, s2.panels)
	assert.Equal(t, 1, base.loads)
}

func TestMultiSink_StopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)

	assert.ErrorIs(t, m.RecordLoad(LoadEvent{}), boom)
	assert.Equal(t, 0, s2.loads)
}
