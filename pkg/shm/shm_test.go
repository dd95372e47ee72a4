package shm

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// openPair creates a writer attachment and a second, independent
// reader attachment to the same segment, the way the writer process
// and an external client process would in production.
func openPair(t *testing.T, key int) (*Window, *Window) {
	t.Helper()
	w, err := Create(key)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	r, err := Attach(key)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	return w, r
}

// TestPublishConsumeHappyPath reproduces spec.md scenario S5's first
// half: writer publishes tick=7, reader observes a consistent record.
func TestPublishConsumeHappyPath(t *testing.T) {
	w, r := openPair(t, 0x4E545031)

	rec := Record{Mode: 3, Lat: 37.1, Lon: -122.9, FD: 5}
	w.Publish(7, rec)

	got, tick, ok := r.Consume(0)
	require.True(t, ok)
	require.EqualValues(t, 7, tick)
	require.Equal(t, int32(3), got.Mode)
	require.InDelta(t, 37.1, got.Lat, 1e-9)
	require.Equal(t, int32(SentinelFD), got.FD)
}

// TestConsumeRejectsStalePublish reproduces S5's second half: the
// writer stalls mid-publish between steps 2 and 4 (bookend2 advanced,
// bookend1 and the record copy not yet). A reader that samples the
// segment during the stall must see bookend1 != bookend2 and retry
// rather than report a torn record.
func TestConsumeRejectsStalePublish(t *testing.T) {
	w, r := openPair(t, 0x4E545032)

	w.Publish(7, Record{Mode: 3, FD: 1})
	first, tick, ok := r.Consume(0)
	require.True(t, ok)
	require.EqualValues(t, 7, tick)
	require.Equal(t, int32(3), first.Mode)

	// Simulate the writer stalling after step 2 (bookend2 <- 8) but
	// before step 5 (bookend1 <- 8): bookend1 still reads 7.
	atomic.StoreUint32(w.bookend2(), 8)

	_, _, ok = r.Consume(tick)
	require.False(t, ok, "reader must not accept a mid-publish segment")

	// Writer completes the publish; the reader now sees tick 8.
	marshalRecord(w.recordBytes(), Record{Mode: 4, FD: 2})
	atomic.StoreUint32(w.bookend1(), 8)

	got, tick2, ok := r.Consume(tick)
	require.True(t, ok)
	require.EqualValues(t, 8, tick2)
	require.Equal(t, int32(4), got.Mode)
}

// TestConsumeIgnoresUnchangedTick ensures a reader that has already
// seen the latest tick does not report it again as fresh.
func TestConsumeIgnoresUnchangedTick(t *testing.T) {
	w, r := openPair(t, 0x4E545033)

	w.Publish(3, Record{Mode: 2})
	_, tick, ok := r.Consume(0)
	require.True(t, ok)

	_, _, ok = r.Consume(tick)
	require.False(t, ok)
}

func TestRecordMarshalRoundTrip(t *testing.T) {
	buf := make([]byte, recordSize)
	want := Record{
		Mode: 3, Status: 2,
		Lat: 12.5, Lon: -45.25, AltHAE: 100.75,
		Speed: 1.5, Track: 90, Climb: 0.1,
		TimeNano: 1234567890123,
		NSats:    9, FD: -1,
	}
	marshalRecord(buf, want)
	got := unmarshalRecord(buf)
	require.Equal(t, want, got)
}
