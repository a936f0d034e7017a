package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbtxn/pkg/dbconfig"
	"github.com/cuemby/dbtxn/pkg/domain"
)

var isolationCmd = &cobra.Command{
	Use:   "isolation LEVEL",
	Short: "Reset the session's isolation level (RR, RC, RC_SNAPSHOT, RU, SERIALIZABLE)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		iso := dbconfig.Isolation(args[0])
		if err := h.session.ResetIsolation(iso, h.session.AsyncWorkspace()); err != nil {
			return err
		}
		fmt.Printf("isolation set to %s\n", h.session.Isolation())
		return nil
	},
}

var lockwaitCmd = &cobra.Command{
	Use:   "lockwait SECONDS",
	Short: "Reset the session's lock-wait timeout (negative means infinite)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		var secs int32
		if _, err := fmt.Sscanf(args[0], "%d", &secs); err != nil {
			return fmt.Errorf("dbclient: invalid seconds %q: %w", args[0], err)
		}
		if err := h.session.ResetWaitTimes(secs); err != nil {
			return err
		}
		fmt.Printf("lock wait set to %dms\n", h.session.LockWaitMillis())
		return nil
	},
}

var asyncwsCmd = &cobra.Command{
	Use:   "asyncws on|off",
	Short: "Toggle async workspace mode for the session's isolation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		on := args[0] == "on"
		if err := h.session.ResetIsolation(h.session.Isolation(), on); err != nil {
			return err
		}
		fmt.Printf("async workspace: %v\n", h.session.AsyncWorkspace())
		return nil
	},
}

var savepointCmd = &cobra.Command{
	Use:   "savepoint NAME",
	Short: "Create a savepoint in the current transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		if err := h.session.Savepoint(args[0]); err != nil {
			return err
		}
		fmt.Printf("savepoint %q created; stack: %v\n", args[0], h.session.Savepoints())
		return nil
	},
}

var partialAbortCmd = &cobra.Command{
	Use:   "partial-abort NAME",
	Short: "Roll back to a named savepoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		if err := h.session.PartialAbort(args[0]); err != nil {
			return err
		}
		fmt.Printf("rolled back to %q; stack: %v\n", args[0], h.session.Savepoints())
		return nil
	},
}

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Commit the current transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		state, err := h.session.Commit()
		if err != nil {
			return err
		}
		fmt.Printf("committed; state: %s\n", state)
		return nil
	},
}

var abortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Abort the current transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		state, err := h.session.Abort()
		if err != nil {
			return err
		}
		fmt.Printf("aborted; state: %s\n", state)
		return nil
	},
}

var changemodeCmd = &cobra.Command{
	Use:   "changemode active|standby|maintenance",
	Short: "Change the server's HA mode (unsupported in this client/server-only build)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Standalone-mode changemode is decided as "not implemented"
		// (DESIGN.md): this repo is client/server only, so
		// changemode has nothing to change between.
		return domain.NewError(domain.OnlyInStandalone, "commands.go", 0, args[0])
	},
}
