package rsdos

import (
	"fmt"
	"strings"

	"github.com/tchajed/marshal"
)

// Leading-byte sentinels of a directory slot.
const (
	SlotUnused  = 0xFF // this and every following slot is unused
	SlotDeleted = 0x00
)

// FileType is the RS-DOS file type code.
type FileType byte

const (
	TypeProgram FileType = 0
	TypeData    FileType = 1
	TypeMachine FileType = 2
	TypeText    FileType = 3
)

func (t FileType) String() string {
	switch t {
	case TypeProgram:
		return "BPRG"
	case TypeData:
		return "BDAT"
	case TypeMachine:
		return "M/L"
	case TypeText:
		return "TEXT"
	}
	return fmt.Sprintf("%d", byte(t))
}

// ASCII flag values.
const (
	FlagBinary = 0x00
	FlagASCII  = 0x01
)

// Entry is one 32-byte directory slot. The fields mirror the on-disk layout
// so that decoding and encoding are lossless.
type Entry struct {
	Slot            int
	RawName         [8]byte
	RawExt          [3]byte
	Type            FileType
	Flag            byte
	FirstGranule    byte
	LastSectorBytes uint16 // big-endian on disk
	Reserved        [16]byte
}

func decodeEntry(slot int, b []byte) Entry {
	e := Entry{Slot: slot}
	dec := marshal.NewDec(b)
	copy(e.RawName[:], dec.GetBytes(8))
	copy(e.RawExt[:], dec.GetBytes(3))
	meta := dec.GetBytes(5)
	e.Type = FileType(meta[0])
	e.Flag = meta[1]
	e.FirstGranule = meta[2]
	e.LastSectorBytes = uint16(meta[3])<<8 | uint16(meta[4])
	copy(e.Reserved[:], dec.GetBytes(16))
	return e
}

// Encode returns the 32 on-disk bytes of the entry.
func (e Entry) Encode() []byte {
	enc := marshal.NewEnc(EntrySize)
	enc.PutBytes(e.RawName[:])
	enc.PutBytes(e.RawExt[:])
	enc.PutBytes([]byte{
		byte(e.Type),
		e.Flag,
		e.FirstGranule,
		byte(e.LastSectorBytes >> 8),
		byte(e.LastSectorBytes),
	})
	enc.PutBytes(e.Reserved[:])
	return enc.Finish()
}

// NewEntry builds a live entry with space padded name and extension.
func NewEntry(name, ext string, typ FileType, flag byte, first byte, lastSectorBytes uint16) Entry {
	e := Entry{
		Type:            typ,
		Flag:            flag,
		FirstGranule:    first,
		LastSectorBytes: lastSectorBytes,
	}
	copy(e.RawName[:], padRight(name, len(e.RawName)))
	copy(e.RawExt[:], padRight(ext, len(e.RawExt)))
	return e
}

// UnusedEntry is the filler written after the last live slot: 0xFF
// followed by 31 zero bytes.
func UnusedEntry() Entry {
	var e Entry
	e.RawName[0] = SlotUnused
	return e
}

func padRight(s string, n int) []byte {
	if len(s) > n {
		s = s[:n]
	}
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = ' '
	}
	return b
}

// Unused reports whether the slot terminates the directory.
func (e *Entry) Unused() bool { return e.RawName[0] == SlotUnused }

// Deleted reports whether the slot holds a deleted file.
func (e *Entry) Deleted() bool { return e.RawName[0] == SlotDeleted }

// Live reports whether the slot describes an existing file.
func (e *Entry) Live() bool { return !e.Unused() && !e.Deleted() }

// Name returns the trimmed file name. Non-ASCII bytes are dropped.
func (e *Entry) Name() string { return decodeASCII(e.RawName[:]) }

// Ext returns the trimmed extension.
func (e *Entry) Ext() string { return decodeASCII(e.RawExt[:]) }

// FullName is NAME.EXT, or NAME when there is no extension.
func (e *Entry) FullName() string {
	if e.Ext() == "" {
		return e.Name()
	}
	return e.Name() + "." + e.Ext()
}

// ASCII reports whether the ASCII flag is set. Disk BASIC itself writes
// 0xFF; any non-zero flag counts.
func (e *Entry) ASCII() bool { return e.Flag != FlagBinary }

func decodeASCII(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
		}
	}
	return strings.TrimRight(sb.String(), " \t\r\n\v\f")
}

// AllSlots returns every one of the 72 slots in order, regardless of
// sentinels. Slots missing from a short image read as unused.
func AllSlots(img *Image) []Entry {
	raw := img.readAt(DirOffset, DirSize, SlotUnused)
	entries := make([]Entry, 0, NumSlots)
	for i := 0; i < NumSlots; i++ {
		entries = append(entries, decodeEntry(i, raw[i*EntrySize:(i+1)*EntrySize]))
	}
	return entries
}

// ReadSlots scans the directory in slot order up to the first unused
// sentinel. Deleted slots are included.
func ReadSlots(img *Image) []Entry {
	var entries []Entry
	for _, e := range AllSlots(img) {
		if e.Unused() {
			break
		}
		entries = append(entries, e)
	}
	return entries
}

// LiveEntries is ReadSlots without the deleted slots.
func LiveEntries(img *Image) []Entry {
	var live []Entry
	for _, e := range ReadSlots(img) {
		if e.Live() {
			live = append(live, e)
		}
	}
	return live
}

// WriteSlots serializes entries into the directory region in the order
// given, padding the remaining slots with UnusedEntry. Each entry's Slot
// field is updated to its new position.
func WriteSlots(img *Image, entries []Entry) error {
	if len(entries) > NumSlots {
		return fmt.Errorf("directory holds %d slots, got %d entries", NumSlots, len(entries))
	}
	r, err := img.region(DirOffset, DirSize)
	if err != nil {
		return err
	}
	buf := make([]byte, 0, DirSize)
	for i := range entries {
		entries[i].Slot = i
		buf = append(buf, entries[i].Encode()...)
	}
	unused := UnusedEntry()
	for len(buf) < DirSize {
		buf = append(buf, unused.Encode()...)
	}
	copy(r, buf)
	return nil
}
