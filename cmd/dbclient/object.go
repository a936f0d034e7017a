package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuemby/dbtxn/pkg/domain"
	"github.com/cuemby/dbtxn/pkg/wire"
)

// parseOID parses a "volume,page,slot" triple as used by the class-oid
// argument on the object subcommands.
func parseOID(s string) (wire.OID, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return wire.OID{}, fmt.Errorf("dbclient: oid %q: want volume,page,slot", s)
	}
	var nums [3]int32
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return wire.OID{}, fmt.Errorf("dbclient: oid %q: %w", s, err)
		}
		nums[i] = int32(n)
	}
	return wire.OID{Volume: nums[0], Page: nums[1], Slot: nums[2]}, nil
}

// varcharFields wraps each command-line string argument as a VarChar
// domain.Value, the simplest field shape the object subcommands support.
func varcharFields(args []string) []*domain.Value {
	fields := make([]*domain.Value, len(args))
	for i, a := range args {
		fields[i] = domain.NewBytes(domain.VarChar, domain.FloatingPrecision, []byte(a))
	}
	return fields
}

var objectCreateCmd = &cobra.Command{
	Use:   "object-create CLASS_OID FIELD...",
	Short: "Stage a new object under CLASS_OID (volume,page,slot) with the given VarChar fields, flushed on the next commit/savepoint",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classOID, err := parseOID(args[0])
		if err != nil {
			return err
		}
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		oid, err := h.session.CreateObject(classOID, false, varcharFields(args[1:]))
		if err != nil {
			return err
		}
		fmt.Printf("staged temp oid %d,%d,%d\n", oid.Volume, oid.Page, oid.Slot)
		return nil
	},
}

var objectUpdateCmd = &cobra.Command{
	Use:   "object-update OID CLASS_OID FIELD...",
	Short: "Stage a field update for OID (volume,page,slot) under CLASS_OID, flushed on the next commit/savepoint",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oid, err := parseOID(args[0])
		if err != nil {
			return err
		}
		classOID, err := parseOID(args[1])
		if err != nil {
			return err
		}
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		if err := h.session.UpdateObject(oid, classOID, false, varcharFields(args[2:])); err != nil {
			return err
		}
		fmt.Println("staged update")
		return nil
	},
}

var objectFlushCmd = &cobra.Command{
	Use:   "object-flush",
	Short: "Force every staged object out to the server now, without waiting for a commit or savepoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := connect(cmd)
		if err != nil {
			return err
		}
		defer h.Close()

		if err := h.session.Flush(); err != nil {
			return err
		}
		fmt.Println("flushed")
		return nil
	},
}
