// Package tag models a MIFARE Classic tag image.
//
// A Tag always holds 256 blocks of 16 bytes, the full 4k layout. A 1k tag
// uses the first 64 blocks. Sectors 0x00-0x1f hold 4 blocks each; on 4k
// tags sectors 0x20-0x27 hold 16 blocks each. The last block of every
// sector is the trailer:
//
//	bytes 0-5    key A
//	bytes 6-9    access bits and general purpose byte
//	bytes 10-15  key B
//
// Key material is carried in a second image, the auth image, that holds
// only trailer blocks. LoadAuth and ImportAuth strip everything else.
package tag
