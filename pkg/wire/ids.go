package wire

// OID identifies a record in the server's heap as a (volume, page, slot)
// triple. NullOID (volume == -1) denotes an unbound reference on the wire,
// using the CUBRID sentinel (page=-1, volume=-1, slot=-1).
type OID struct {
	Volume int32
	Page   int32
	Slot   int32
}

// NullOID is the distinguished unbound OID.
var NullOID = OID{Volume: -1, Page: -1, Slot: -1}

// IsNull reports whether o is the distinguished null OID.
func (o OID) IsNull() bool { return o.Volume == -1 }

func (c *Cursor) PutOID(o OID) error {
	if err := c.PutInt32(o.Volume); err != nil {
		return err
	}
	if err := c.PutInt32(o.Page); err != nil {
		return err
	}
	return c.PutInt32(o.Slot)
}

func (c *Cursor) GetOID() (OID, error) {
	var o OID
	var err error
	if o.Volume, err = c.GetInt32(); err != nil {
		return o, err
	}
	if o.Page, err = c.GetInt32(); err != nil {
		return o, err
	}
	if o.Slot, err = c.GetInt32(); err != nil {
		return o, err
	}
	return o, nil
}

// HFID is a server-side heap file identifier.
type HFID struct {
	Volume int32
	Page   int32
}

func (c *Cursor) PutHFID(h HFID) error {
	if err := c.PutInt32(h.Volume); err != nil {
		return err
	}
	return c.PutInt32(h.Page)
}

func (c *Cursor) GetHFID() (HFID, error) {
	var h HFID
	var err error
	if h.Volume, err = c.GetInt32(); err != nil {
		return h, err
	}
	h.Page, err = c.GetInt32()
	return h, err
}

// BTID is a server-side B-tree identifier.
type BTID struct {
	Volume int32
	Root   int32
}

func (c *Cursor) PutBTID(b BTID) error {
	if err := c.PutInt32(b.Volume); err != nil {
		return err
	}
	return c.PutInt32(b.Root)
}

func (c *Cursor) GetBTID() (BTID, error) {
	var b BTID
	var err error
	if b.Volume, err = c.GetInt32(); err != nil {
		return b, err
	}
	b.Root, err = c.GetInt32()
	return b, err
}

// LSA is a log sequence address: a (page_id, offset) pair locating a log
// record. It is a double-aligned type on the wire.
type LSA struct {
	PageID int64
	Offset int32
}

func (c *Cursor) PutLSA(l LSA) error {
	if err := c.Align(8); err != nil {
		return err
	}
	if err := c.PutInt64(l.PageID); err != nil {
		return err
	}
	return c.PutInt32(l.Offset)
}

func (c *Cursor) GetLSA() (LSA, error) {
	var l LSA
	if err := c.SkipAlign(8); err != nil {
		return l, err
	}
	var err error
	if l.PageID, err = c.GetInt64(); err != nil {
		return l, err
	}
	l.Offset, err = c.GetInt32()
	return l, err
}
