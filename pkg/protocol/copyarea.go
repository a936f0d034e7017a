package protocol

import "github.com/cuemby/dbtxn/pkg/wire"

// CopyOperation is the per-descriptor operation kind in a Copy Area
// (insert/update/delete against the object named by the descriptor).
type CopyOperation int32

const (
	CopyOpNone CopyOperation = iota
	CopyOpInsert
	CopyOpUpdate
	CopyOpDelete
)

// CopyDescriptor is one entry in a Copy Area's descriptor table:
// `(operation, oid, class_oid, length, offset)`.
type CopyDescriptor struct {
	Operation CopyOperation
	OID       wire.OID
	ClassOID  wire.OID
	Length    int32
	Offset    int32
}

// CopyArea is the bulk object carrier used by locator_fetch/locator_force
// a descriptor table plus a content block holding the
// packed object images the descriptors point into.
type CopyArea struct {
	StartMultiUpdate int32
	EndMultiUpdate   int32
	ClassOID         wire.OID
	Descriptors      []CopyDescriptor
	Content          []byte
}

// Encode packs ca following the layout: header, then num_objs descriptor
// records, then the content block.
func (ca *CopyArea) Encode() ([]byte, error) {
	w := wire.NewWriter(ca.wireSize())
	if err := w.PutInt32(int32(len(ca.Descriptors))); err != nil {
		return nil, err
	}
	if err := w.PutInt32(ca.StartMultiUpdate); err != nil {
		return nil, err
	}
	if err := w.PutInt32(ca.EndMultiUpdate); err != nil {
		return nil, err
	}
	if err := w.PutOID(ca.ClassOID); err != nil {
		return nil, err
	}
	if err := w.PutInt32(int32(len(ca.Descriptors) * descriptorWireSize)); err != nil {
		return nil, err
	}
	if err := w.PutInt32(int32(len(ca.Content))); err != nil {
		return nil, err
	}
	for _, d := range ca.Descriptors {
		if err := w.PutInt32(int32(d.Operation)); err != nil {
			return nil, err
		}
		if err := w.PutOID(d.OID); err != nil {
			return nil, err
		}
		if err := w.PutOID(d.ClassOID); err != nil {
			return nil, err
		}
		if err := w.PutInt32(d.Length); err != nil {
			return nil, err
		}
		if err := w.PutInt32(d.Offset); err != nil {
			return nil, err
		}
	}
	if err := w.PutBytes(ca.Content); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

const descriptorWireSize = 4 + 12 + 12 + 4 + 4 // operation, oid, class_oid, length, offset

func (ca *CopyArea) wireSize() int {
	return 32 + len(ca.Descriptors)*descriptorWireSize + len(ca.Content)
}

// DecodeCopyArea is the inverse of Encode.
func DecodeCopyArea(buf []byte) (*CopyArea, error) {
	r := wire.NewReader(buf)
	numObjs, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	ca := &CopyArea{}
	if ca.StartMultiUpdate, err = r.GetInt32(); err != nil {
		return nil, err
	}
	if ca.EndMultiUpdate, err = r.GetInt32(); err != nil {
		return nil, err
	}
	if ca.ClassOID, err = r.GetOID(); err != nil {
		return nil, err
	}
	descSize, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	contentSize, err := r.GetInt32()
	if err != nil {
		return nil, err
	}
	_ = descSize
	ca.Descriptors = make([]CopyDescriptor, 0, numObjs)
	for i := int32(0); i < numObjs; i++ {
		var d CopyDescriptor
		op, err := r.GetInt32()
		if err != nil {
			return nil, err
		}
		d.Operation = CopyOperation(op)
		if d.OID, err = r.GetOID(); err != nil {
			return nil, err
		}
		if d.ClassOID, err = r.GetOID(); err != nil {
			return nil, err
		}
		if d.Length, err = r.GetInt32(); err != nil {
			return nil, err
		}
		if d.Offset, err = r.GetInt32(); err != nil {
			return nil, err
		}
		ca.Descriptors = append(ca.Descriptors, d)
	}
	content, err := r.GetBytes(int(contentSize))
	if err != nil {
		return nil, err
	}
	ca.Content = append([]byte(nil), content...)
	return ca, nil
}

// ObjectImage returns the packed bytes for descriptor i's object.
func (ca *CopyArea) ObjectImage(i int) []byte {
	d := ca.Descriptors[i]
	return ca.Content[d.Offset : d.Offset+d.Length]
}

// SetPermanentOID rewrites descriptor i's OID after a force reply resolves
// a temporary OID to a permanent one.
func (ca *CopyArea) SetPermanentOID(i int, oid wire.OID) {
	ca.Descriptors[i].OID = oid
}
