// Package shm implements the shared-memory export window (spec
// component C8): a single fixed-layout SysV shared-memory segment
// carrying the last-published fix-bearing record behind a two-counter
// bookend protocol, so any number of readers can consume a consistent
// snapshot without locking against the single writer. Grounded on
// golang.org/x/sys/unix's SysvShm* wrappers, already an indirect
// dependency of the teacher (pulled in by go.bug.st/serial's termios
// handling) and promoted here to a direct one.
package shm

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ntpsec/gnssd/pkg/fix"
)

// DefaultKey is the SysV key used when the environment does not
// override it (GPSD_SHM_KEY, see internal/config).
const DefaultKey = 0x4E545030

// SentinelFD marks a record as having arrived via the shared-memory
// window rather than a live session, overwritten into the copy after
// step 3 of the publish protocol.
const SentinelFD = -1

// recordSize is the wire size of Record: two int32 fields, six
// float64 fields, one int64 field, and two trailing int32 fields.
const recordSize = 4 + 4 + 8*6 + 8 + 4 + 4

// headerSize is bookend1 (4 bytes) plus its alignment pad (4 bytes).
const headerSize = 8

// segmentSize is the full SysV segment: header, record, bookend2.
const segmentSize = headerSize + recordSize + 4

// Record is the canonical fix-bearing snapshot copied into the
// window. It carries a reduced projection of fix.Fix: the fields a
// shared-memory consumer actually needs, not the full record (spec.md
// §6.2 leaves the canonical record's exact shape to the
// implementation; this module defines it here and documents the
// choice in DESIGN.md).
type Record struct {
	Mode     int32
	Status   int32
	Lat      float64
	Lon      float64
	AltHAE   float64
	Speed    float64
	Track    float64
	Climb    float64
	TimeNano int64
	NSats    int32
	FD       int32
}

// FromFix projects a fix.Fix into the window's wire record. fd is the
// originating session's file descriptor, overwritten with SentinelFD
// by Publish once the copy is safely in the segment.
func FromFix(f fix.Fix, nsats int, fd int32) Record {
	return Record{
		Mode:     int32(f.Mode),
		Status:   int32(f.Status),
		Lat:      f.Lat,
		Lon:      f.Lon,
		AltHAE:   f.AltHAE,
		Speed:    f.Speed,
		Track:    f.Track,
		Climb:    f.Climb,
		TimeNano: f.Time.Sec*1e9 + f.Time.Nsec,
		NSats:    int32(nsats),
		FD:       fd,
	}
}

func marshalRecord(dst []byte, r Record) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(r.Mode))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(r.Status))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(r.Lat))
	binary.LittleEndian.PutUint64(dst[16:24], math.Float64bits(r.Lon))
	binary.LittleEndian.PutUint64(dst[24:32], math.Float64bits(r.AltHAE))
	binary.LittleEndian.PutUint64(dst[32:40], math.Float64bits(r.Speed))
	binary.LittleEndian.PutUint64(dst[40:48], math.Float64bits(r.Track))
	binary.LittleEndian.PutUint64(dst[48:56], math.Float64bits(r.Climb))
	binary.LittleEndian.PutUint64(dst[56:64], uint64(r.TimeNano))
	binary.LittleEndian.PutUint32(dst[64:68], uint32(r.NSats))
	binary.LittleEndian.PutUint32(dst[68:72], uint32(r.FD))
}

func unmarshalRecord(src []byte) Record {
	return Record{
		Mode:     int32(binary.LittleEndian.Uint32(src[0:4])),
		Status:   int32(binary.LittleEndian.Uint32(src[4:8])),
		Lat:      math.Float64frombits(binary.LittleEndian.Uint64(src[8:16])),
		Lon:      math.Float64frombits(binary.LittleEndian.Uint64(src[16:24])),
		AltHAE:   math.Float64frombits(binary.LittleEndian.Uint64(src[24:32])),
		Speed:    math.Float64frombits(binary.LittleEndian.Uint64(src[32:40])),
		Track:    math.Float64frombits(binary.LittleEndian.Uint64(src[40:48])),
		Climb:    math.Float64frombits(binary.LittleEndian.Uint64(src[48:56])),
		TimeNano: int64(binary.LittleEndian.Uint64(src[56:64])),
		NSats:    int32(binary.LittleEndian.Uint32(src[64:68])),
		FD:       int32(binary.LittleEndian.Uint32(src[68:72])),
	}
}

// Window is one process's attachment to the shared-memory segment.
// The writer calls Create; readers call Attach. Both end up with an
// identical *Window and may call Publish/Consume respectively (the
// segment itself does not enforce single-writer discipline; that is
// the caller's responsibility per spec.md §5).
type Window struct {
	id   int
	data []byte
}

// Create attaches a fresh segment at key, sized for one Record, and
// marks it IPC_RMID immediately so it is cleaned up by the kernel once
// the last attached process detaches — an abandoned segment from a
// prior run never blocks this one.
func Create(key int) (*Window, error) {
	id, err := unix.SysvShmGet(key, segmentSize, unix.IPC_CREAT|0666)
	if err != nil {
		return nil, fmt.Errorf("shm: get key 0x%x: %w", key, err)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: attach key 0x%x: %w", key, err)
	}
	if _, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil {
		return nil, fmt.Errorf("shm: mark key 0x%x for removal: %w", key, err)
	}
	return &Window{id: id, data: data}, nil
}

// Attach opens an existing segment for reading. It does not create
// one; a reader started before the writer gets ENOENT.
func Attach(key int) (*Window, error) {
	id, err := unix.SysvShmGet(key, segmentSize, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: attach-only get key 0x%x: %w", key, err)
	}
	data, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: attach key 0x%x: %w", key, err)
	}
	return &Window{id: id, data: data}, nil
}

// Close detaches the segment from this process's address space.
func (w *Window) Close() error {
	return unix.SysvShmDetach(w.data)
}

func (w *Window) bookend1() *uint32 {
	return (*uint32)(unsafe.Pointer(&w.data[0]))
}

func (w *Window) bookend2() *uint32 {
	return (*uint32)(unsafe.Pointer(&w.data[headerSize+recordSize]))
}

func (w *Window) recordBytes() []byte {
	return w.data[headerSize : headerSize+recordSize]
}

// Publish runs the writer protocol (spec.md §4.6) with the tick the
// caller has already bumped: stamp bookend2, copy the record, stamp
// the FD sentinel, then stamp bookend1. A reader observing a torn write sees bookend1 and
// bookend2 disagree and retries; it can never observe a record whose
// copy is only half-written, because bookend1 is only set last.
func (w *Window) Publish(tick uint32, r Record) {
	atomic.StoreUint32(w.bookend2(), tick)
	marshalRecord(w.recordBytes(), r)
	r.FD = SentinelFD
	marshalRecord(w.recordBytes(), r)
	atomic.StoreUint32(w.bookend1(), tick)
}

// Consume runs the four-step reader protocol. lastSeen is the tick
// this caller last accepted; ok is false if the segment was mid-write
// (a != b) or has not advanced since lastSeen.
func (w *Window) Consume(lastSeen uint32) (r Record, tick uint32, ok bool) {
	a := atomic.LoadUint32(w.bookend1())
	r = unmarshalRecord(w.recordBytes())
	b := atomic.LoadUint32(w.bookend2())
	if a != b || a == lastSeen {
		return Record{}, a, false
	}
	return r, a, true
}
