package filetracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	events []string
}

func (r *recorder) Publish(eventType string, info FileInfo, held time.Duration) {
	r.events = append(r.events, eventType+":"+info.Path)
}

func TestOpenAndClose(t *testing.T) {
	rec := &recorder{}
	ft := NewTracker(rec)

	a := ft.TrackOpen("a.zip")
	b := ft.TrackOpen("a.zip")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, ft.OpenCount())

	ft.TrackClose(a)
	ft.TrackClose(a)
	assert.Equal(t, 1, ft.OpenCount())
	assert.Equal(t, []string{"file_opened:a.zip", "file_opened:a.zip", "file_closed:a.zip"}, rec.events)
}

func TestDetectLeaks(t *testing.T) {
	ft := NewTracker(nil)
	clock := time.Unix(5000, 0)
	ft.now = func() time.Time { return clock }

	old := ft.TrackOpen("old.zip")
	clock = clock.Add(10 * time.Minute)
	ft.TrackOpen("fresh.zip")

	leaks := ft.DetectLeaks(5 * time.Minute)
	if assert.Len(t, leaks, 1) {
		assert.Equal(t, old, leaks[0].Handle)
		assert.Equal(t, "old.zip", leaks[0].Path)
	}
	assert.Len(t, ft.DetectLeaks(0), 2)
}

func TestDisabledTracker(t *testing.T) {
	ft := NewTracker(nil)
	ft.SetEnabled(false)

	h := ft.TrackOpen("a.zip")
	assert.Zero(t, h)
	ft.TrackClose(h)
	assert.Zero(t, ft.OpenCount())
}

func TestStackTraces(t *testing.T) {
	ft := NewTracker(nil)
	ft.SetStackTraces(true)
	ft.TrackOpen("a.zip")

	files := ft.GetOpenFiles()
	if assert.Len(t, files, 1) {
		assert.NotEmpty(t, files[0].StackTrace)
	}
}
