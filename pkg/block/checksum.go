package block

import "hash"

// Checksum is the running 32-bit byte sum appended to every save file. It
// detects corruption only.
type Checksum struct {
	sum uint32
}

var _ hash.Hash32 = (*Checksum)(nil)

func NewChecksum() *Checksum { return &Checksum{} }

// Write adds every byte of p to the sum. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	s := c.sum
	for _, v := range p {
		s += uint32(v)
	}
	c.sum = s
	return len(p), nil
}

func (c *Checksum) Sum32() uint32 { return c.sum }

// Sum appends the big-endian sum to b, as hash.Hash requires. Files store
// the value in their own byte order; use Sum32 for that.
func (c *Checksum) Sum(b []byte) []byte {
	s := c.sum
	return append(b, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}

func (c *Checksum) Reset()         { c.sum = 0 }
func (c *Checksum) Size() int      { return 4 }
func (c *Checksum) BlockSize() int { return 1 }

// Sum32 returns the byte sum of data.
func Sum32(data []byte) uint32 {
	c := Checksum{}
	c.Write(data)
	return c.sum
}
