package minidb

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Row layout, text columns carry one extra byte for the terminating zero
const (
	ColumnUsernameSize = 32
	ColumnEmailSize    = 255

	idSize         = 4
	usernameSize   = ColumnUsernameSize + 1
	emailSize      = ColumnEmailSize + 1
	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize
	RowSize        = idSize + usernameSize + emailSize
)

// Row is the single fixed schema of the table, keyed by ID.
type Row struct {
	ID       int32
	Username string
	Email    string
}

func (r Row) Key() uint32 {
	return uint32(r.ID)
}

func (r Row) Validate() error {
	if r.ID <= 0 {
		return ErrIDNotPositive
	}
	if len(r.Username) > ColumnUsernameSize || len(r.Email) > ColumnEmailSize {
		return ErrStringTooLong
	}
	return nil
}

func (r Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

func (r Row) Marshal() ([]byte, error) {
	buf := make([]byte, RowSize)
	if err := r.marshalTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r Row) marshalTo(buf []byte) error {
	if len(buf) < RowSize {
		return errShortBuffer("row", RowSize, len(buf))
	}
	if err := r.Validate(); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(buf[idOffset:], uint32(r.ID))
	serializeString(r.Username, buf[usernameOffset:usernameOffset+usernameSize])
	serializeString(r.Email, buf[emailOffset:emailOffset+emailSize])

	return nil
}

func UnmarshalRow(buf []byte, aRow *Row) error {
	if len(buf) < RowSize {
		return errShortBuffer("row", RowSize, len(buf))
	}

	aRow.ID = int32(binary.LittleEndian.Uint32(buf[idOffset:]))
	aRow.Username = deserializeString(buf[usernameOffset : usernameOffset+usernameSize])
	aRow.Email = deserializeString(buf[emailOffset : emailOffset+emailSize])

	return nil
}

// serializeString zero pads value to the whole field.
func serializeString(value string, field []byte) {
	n := copy(field, value)
	clear(field[n:])
}

func deserializeString(field []byte) string {
	if end := bytes.IndexByte(field, 0); end >= 0 {
		return string(field[:end])
	}
	return string(field)
}
