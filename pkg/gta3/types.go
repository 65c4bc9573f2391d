package gta3

import (
	"time"

	"github.com/samcharles93/savekit/pkg/bin"
)

// Vector3 is a position or direction in world units.
type Vector3 struct {
	X, Y, Z float32
}

func readVector(b *bin.Buffer) Vector3 {
	return Vector3{X: b.ReadF32(), Y: b.ReadF32(), Z: b.ReadF32()}
}

func writeVector(b *bin.Buffer, v Vector3) {
	b.WriteF32(v.X)
	b.WriteF32(v.Y)
	b.WriteF32(v.Z)
}

// SystemTime is the wall-clock save time in the Win32 SYSTEMTIME layout.
type SystemTime struct {
	Year, Month, DayOfWeek, Day       uint16
	Hour, Minute, Second, Millisecond uint16
}

const systemTimeSize = 16

func readSystemTime(b *bin.Buffer) SystemTime {
	return SystemTime{
		Year: b.ReadU16(), Month: b.ReadU16(), DayOfWeek: b.ReadU16(), Day: b.ReadU16(),
		Hour: b.ReadU16(), Minute: b.ReadU16(), Second: b.ReadU16(), Millisecond: b.ReadU16(),
	}
}

func writeSystemTime(b *bin.Buffer, t SystemTime) {
	for _, v := range []uint16{t.Year, t.Month, t.DayOfWeek, t.Day, t.Hour, t.Minute, t.Second, t.Millisecond} {
		b.WriteU16(v)
	}
}

// NewSystemTime converts t to its SYSTEMTIME fields.
func NewSystemTime(t time.Time) SystemTime {
	return SystemTime{
		Year:        uint16(t.Year()),
		Month:       uint16(t.Month()),
		DayOfWeek:   uint16(t.Weekday()),
		Day:         uint16(t.Day()),
		Hour:        uint16(t.Hour()),
		Minute:      uint16(t.Minute()),
		Second:      uint16(t.Second()),
		Millisecond: uint16(t.Nanosecond() / int(time.Millisecond)),
	}
}

// Time returns the timestamp in UTC, or the zero time when unset.
func (t SystemTime) Time() time.Time {
	if t.Year == 0 {
		return time.Time{}
	}
	return time.Date(int(t.Year), time.Month(t.Month), int(t.Day),
		int(t.Hour), int(t.Minute), int(t.Second), int(t.Millisecond)*int(time.Millisecond), time.UTC)
}
