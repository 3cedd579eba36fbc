package reader

import (
	"fmt"

	"github.com/wippyai/mfterm/tag"
)

const keySlot = 0x00

// Transmitter sends one APDU and returns the raw response including the
// status word. *scard.Card implements it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

func getUIDCmd() []byte {
	return []byte{0xFF, 0xCA, 0x00, 0x00, 0x00}
}

func loadKeyCmd(slot byte, key tag.Key) []byte {
	cmd := []byte{0xFF, 0x82, 0x00, slot, tag.KeySize}
	return append(cmd, key[:]...)
}

func authCmd(block int, kt tag.KeyType, slot byte) []byte {
	code := byte(0x60)
	if kt == tag.KeyB {
		code = 0x61
	}
	return []byte{0xFF, 0x86, 0x00, 0x00, 0x05, 0x01, 0x00, byte(block), code, slot}
}

func readCmd(block int) []byte {
	return []byte{0xFF, 0xB0, 0x00, byte(block), tag.BlockSize}
}

// statusError is a non 90 00 status word.
type statusError struct {
	sw1, sw2 byte
}

func (e statusError) Error() string {
	return fmt.Sprintf("APDU failed: SW=%02X%02X", e.sw1, e.sw2)
}

func transmit(card Transmitter, cmd []byte) ([]byte, error) {
	resp, err := card.Transmit(cmd)
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("short APDU response: % X", resp)
	}
	sw1, sw2 := resp[len(resp)-2], resp[len(resp)-1]
	if sw1 != 0x90 || sw2 != 0x00 {
		return nil, statusError{sw1, sw2}
	}
	return resp[:len(resp)-2], nil
}
