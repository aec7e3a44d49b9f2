package newtonm2

// crcLength is the size of the trailing frame checksum.
const crcLength = 4

// crc32Block computes the NovAtel OEM CRC-32: reflected polynomial
// 0xEDB88320, zero initial value, no final inversion. This is NOT the
// IEEE CRC-32 of hash/crc32, which inverts at both ends.
func crc32Block(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = crc32Table[(crc^uint32(b))&0xff] ^ (crc >> 8)
	}
	return crc
}

var crc32Table = func() [256]uint32 {
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for bit := 0; bit < 8; bit++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xEDB88320
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()
