package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/events"
	"github.com/cuemby/dbtxn/pkg/looseend"
	"github.com/cuemby/dbtxn/pkg/session"
	"github.com/cuemby/dbtxn/pkg/transport"
	"github.com/cuemby/dbtxn/pkg/workspace"
)

// handle bundles everything connect opens, so commands can defer a single
// close.
type handle struct {
	conn    *transport.Conn
	ws      *workspace.Workspace
	session *session.Session
}

func (h *handle) Close() {
	if h.ws != nil {
		h.ws.Close()
	}
	if h.conn != nil {
		h.conn.Close()
	}
}

// connect loads the profile named by --profile (or the config's default),
// dials its server, opens one session stream, and wires a Session around
// it. Every dbclient subcommand is a single operation against a freshly
// opened session; there is no persistent session cache across
// invocations.
func connect(cmd *cobra.Command) (*handle, error) {
	configPath, _ := cmd.Flags().GetString("config")
	profileName, _ := cmd.Flags().GetString("profile")

	cfg, err := dbconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Resolve(profileName)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	conn, err := transport.Dial(ctx, profile.Address)
	if err != nil {
		return nil, err
	}

	stream, err := conn.OpenSession(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("dbclient: opening session stream: %w", err)
	}
	client := transport.NewCallClient(stream)

	dataDir := filepath.Join(os.TempDir(), "dbclient-workspaces")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		conn.Close()
		return nil, err
	}
	ws, err := workspace.Open(dataDir, os.Getpid())
	if err != nil {
		conn.Close()
		return nil, err
	}

	dispatch := looseend.NewDispatcher()
	bus := events.NewBroker()
	s := session.New(int32(os.Getpid()), client, ws, dispatch, bus, profile.Isolation, int32(profile.LockWaitSeconds), profile.AsyncWorkspace)

	return &handle{conn: conn, ws: ws, session: s}, nil
}
