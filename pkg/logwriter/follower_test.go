package logwriter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuemby/dbtxn/pkg/protocol"
)

// fakeServer simulates a server whose eof_lsa page advances and which
// hands back pages a handful at a time per fetch round.
type fakeServer struct {
	eofPageID    int64
	nextToSend   int64
	pagesPerCall int
	crashAfter   int // 0 = never
	calls        int
}

func (s *fakeServer) Call(op protocol.Op, arg []byte, data ...[]byte) (*protocol.Frame, error) {
	s.calls++
	if s.crashAfter != 0 && s.calls >= s.crashAfter {
		argRegion, _, err := protocol.EncodeLogPageBatch(&protocol.LogPageBatch{ServerCrashed: true})
		if err != nil {
			return nil, err
		}
		return &protocol.Frame{Op: op, ArgRegion: argRegion}, nil
	}

	header := &protocol.LogHeader{EOFPageID: s.eofPageID, NextArchivePhysicalPageID: 1 << 30}

	n := s.pagesPerCall
	if remaining := s.eofPageID - s.nextToSend + 1; int64(n) > remaining {
		n = int(remaining)
	}
	if n < 0 {
		n = 0
	}
	pages := make([]protocol.LogPage, n)
	for i := 0; i < n; i++ {
		pages[i] = protocol.LogPage{PageID: s.nextToSend + int64(i), Data: []byte("page-data")}
	}
	s.nextToSend += int64(n)

	argRegion, dataRegions, err := protocol.EncodeLogPageBatch(&protocol.LogPageBatch{Header: header, Pages: pages})
	if err != nil {
		return nil, err
	}
	return &protocol.Frame{Op: op, ArgRegion: argRegion, DataRegions: dataRegions}, nil
}

func openTestStore(t *testing.T) *PageStore {
	t.Helper()
	store, err := OpenPageStore(filepath.Join(t.TempDir(), "pages.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestFollowerReachesServerEOF checks that if the server
// advances eof_lsa by N pages and the follower runs in Async mode, after
// a finite number of rounds last_recv_pageid >= server.eof_lsa.pageid.
func TestFollowerReachesServerEOF(t *testing.T) {
	store := openTestStore(t)
	srv := &fakeServer{eofPageID: 9, pagesPerCall: 3}
	f := NewFollower(srv, store, Async)

	rounds, err := f.RunUntil(9, 20)
	require.NoError(t, err)
	require.Greater(t, rounds, 0)
	require.Equal(t, int64(9), f.LastRecvPageID())
	require.Equal(t, int64(0), f.LagPages())

	data, err := store.GetPage(5)
	require.NoError(t, err)
	require.Equal(t, "page-data", string(data))
}

func TestFollowerFirstExchangeRequestsHeaderPage(t *testing.T) {
	store := openTestStore(t)
	srv := &fakeServer{eofPageID: 2, pagesPerCall: 1}
	f := NewFollower(srv, store, Sync)

	_, err := f.Step()
	require.NoError(t, err)
	require.True(t, f.contacted)
}

func TestFollowerForcesAsyncWhenBehind(t *testing.T) {
	store := openTestStore(t)
	srv := &fakeServer{eofPageID: 100, pagesPerCall: 1}
	f := NewFollower(srv, store, Sync)

	_, err := f.Step()
	require.NoError(t, err)
	require.Equal(t, Async, f.Mode())
}

func TestFollowerHandlesServerCrash(t *testing.T) {
	store := openTestStore(t)
	srv := &fakeServer{eofPageID: 5, pagesPerCall: 5, crashAfter: 1}
	f := NewFollower(srv, store, SemiSync)

	_, err := f.Step()
	require.NoError(t, err)
	require.True(t, f.ShuttingDown())
	require.True(t, f.Pending().Has(ActionHdrWrite))
}
