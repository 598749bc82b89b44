package ogg

// Ogg uses CRC-32 with the polynomial 0x04c11db7, but unlike hash/crc32
// neither the input nor the output is reflected, the initial value is
// 0 and there is no final xor.
var crcTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// Checksum returns the Ogg CRC of data.
func Checksum(data []byte) uint32 {
	return update(0, data)
}

func update(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}
