package protocol

import (
	"fmt"

	"github.com/cuemby/dbtxn/pkg/wire"
)

// HeaderPageID is the distinguished page id requested on the first
// exchange with a never-contacted server, before any data page is safe to
// consume.
const HeaderPageID int64 = -1

// LogHeader mirrors the subset of the server's log header a follower
// needs to drive its pull loop and archive bookkeeping.
type LogHeader struct {
	EOFPageID                 int64
	EOFOffset                 int32
	CheckpointPageID          int64
	NextArchivePhysicalPageID int64 // nxarv_phy_pageid
	HAServerState             HAServerState
}

// HAServerState is the server's replication role as seen by a follower.
type HAServerState uint8

const (
	HAServerActive HAServerState = iota
	HAServerStandby
	HAServerDead
)

// LogPage is one page of log data at a known page id.
type LogPage struct {
	PageID int64
	Data   []byte
}

// LogPageBatch is one fetch_log_pages reply: an optional header (present
// on a never-contacted-server exchange or whenever the server chooses to
// resend it), zero or more sequential data pages carried as the frame's
// data regions, and a crash flag.
type LogPageBatch struct {
	Header        *LogHeader
	Pages         []LogPage
	ServerCrashed bool
}

// EncodeLogPageBatch packs b into a reply Frame's arg region plus data
// regions, the layout fetch_log_pages (OpLogWriterFetchLogPages) replies
// with.
func EncodeLogPageBatch(b *LogPageBatch) (arg []byte, data [][]byte, err error) {
	w := wire.NewWriter(64)
	if b.Header != nil {
		if err := w.PutUint8(1); err != nil {
			return nil, nil, err
		}
		if err := w.PutInt64(b.Header.EOFPageID); err != nil {
			return nil, nil, err
		}
		if err := w.PutInt32(b.Header.EOFOffset); err != nil {
			return nil, nil, err
		}
		if err := w.PutInt64(b.Header.CheckpointPageID); err != nil {
			return nil, nil, err
		}
		if err := w.PutInt64(b.Header.NextArchivePhysicalPageID); err != nil {
			return nil, nil, err
		}
		if err := w.PutUint8(uint8(b.Header.HAServerState)); err != nil {
			return nil, nil, err
		}
	} else {
		if err := w.PutUint8(0); err != nil {
			return nil, nil, err
		}
	}

	crashed := uint8(0)
	if b.ServerCrashed {
		crashed = 1
	}
	if err := w.PutUint8(crashed); err != nil {
		return nil, nil, err
	}

	firstPageID := int64(0)
	if len(b.Pages) > 0 {
		firstPageID = b.Pages[0].PageID
	}
	if err := w.PutInt64(firstPageID); err != nil {
		return nil, nil, err
	}
	if err := w.PutInt32(int32(len(b.Pages))); err != nil {
		return nil, nil, err
	}

	regions := make([][]byte, len(b.Pages))
	for i, p := range b.Pages {
		regions[i] = p.Data
	}
	return w.Bytes(), regions, nil
}

// DecodeLogPageBatch is EncodeLogPageBatch's inverse, reconstructing page
// ids from the leading page id plus the reply's data regions.
func DecodeLogPageBatch(f *Frame) (*LogPageBatch, error) {
	r := wire.NewReader(f.ArgRegion)
	hasHeader, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	b := &LogPageBatch{}
	if hasHeader != 0 {
		h := &LogHeader{}
		if h.EOFPageID, err = r.GetInt64(); err != nil {
			return nil, err
		}
		if h.EOFOffset, err = r.GetInt32(); err != nil {
			return nil, err
		}
		if h.CheckpointPageID, err = r.GetInt64(); err != nil {
			return nil, err
		}
		if h.NextArchivePhysicalPageID, err = r.GetInt64(); err != nil {
			return nil, err
		}
		state, err := r.GetUint8()
		if err != nil {
			return nil, err
		}
		h.HAServerState = HAServerState(state)
		b.Header = h
	}

	crashed, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	b.ServerCrashed = crashed != 0

	firstPageID, err := r.GetInt64()
	if err != nil {
		return nil, err
	}
	count, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	if int(count) != len(f.DataRegions) {
		return nil, fmt.Errorf("protocol: log page batch declares %d pages, got %d data regions", count, len(f.DataRegions))
	}
	b.Pages = make([]LogPage, len(f.DataRegions))
	for i, data := range f.DataRegions {
		b.Pages[i] = LogPage{PageID: firstPageID + int64(i), Data: data}
	}
	return b, nil
}
