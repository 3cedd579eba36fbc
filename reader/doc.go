// Package reader reads MIFARE Classic tags through a PC/SC reader.
//
// Commands are sent as the pseudo APDUs understood by ACR122 style
// readers:
//
//	FF CA 00 00 00               get UID
//	FF 82 00 <slot> 06 <key>     load key into volatile slot
//	FF 86 00 00 05 01 00 <blk> <60|61> <slot>
//	                             authenticate block with key A or B
//	FF B0 00 <blk> 10            read 16 byte block
//
// Keys come from an auth image (see tag.LoadAuth). Card reads hand back
// masked keys, so trailers in the result carry the keys of the auth image
// and the access bits read from the card.
package reader
