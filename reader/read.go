package reader

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/tag"
)

// Result is a tag image read from a card.
type Result struct {
	Tag *tag.Tag
	UID []byte
	// Failed lists sectors that could not be authenticated or read. Their
	// blocks are left zeroed.
	Failed []int
}

func readUID(card Transmitter) ([]byte, error) {
	uid, err := transmit(card, getUIDCmd())
	if err != nil {
		return nil, errors.IO(errors.PhaseDevice, "get UID", err)
	}
	return uid, nil
}

// ReadTag reads a tag of the given size over card. A sector that fails is
// recorded in Result.Failed and reading moves on to the next one.
func ReadTag(ctx context.Context, card Transmitter, auth *tag.Tag, kt tag.KeyType, size tag.Size) (*Result, error) {
	uid, err := readUID(card)
	if err != nil {
		return nil, err
	}

	res := &Result{Tag: tag.New(), UID: uid}
	for _, header := range tag.SectorHeaders(size) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.PhaseDevice, errors.KindIO, err, "read interrupted")
		}

		sector := tag.BlockToSector(header)
		if err := readSector(card, res.Tag, auth, kt, header); err != nil {
			Logger().Warn("sector read failed",
				zap.Int("sector", sector),
				zap.Stringer("key_type", kt),
				zap.Error(err))
			clearSector(res.Tag, header)
			res.Failed = append(res.Failed, sector)
		}
	}

	Logger().Debug("tag read",
		zap.Stringer("size", size),
		zap.Binary("uid", uid),
		zap.Ints("failed", res.Failed))
	return res, nil
}

func readSector(card Transmitter, dst, auth *tag.Tag, kt tag.KeyType, header int) error {
	sector := tag.BlockToSector(header)
	if _, err := transmit(card, loadKeyCmd(keySlot, auth.Key(kt, header))); err != nil {
		return errors.AuthFailed(sector, err)
	}
	if _, err := transmit(card, authCmd(header, kt, keySlot)); err != nil {
		return errors.AuthFailed(sector, err)
	}

	trailer := tag.BlockToTrailer(header)
	for b := header; b <= trailer; b++ {
		data, err := transmit(card, readCmd(b))
		if err != nil {
			return errors.IO(errors.PhaseDevice, "read block", err)
		}
		if len(data) != tag.BlockSize {
			return errors.New(errors.PhaseDevice, errors.KindIO).
				Value(b).
				Detail("block %#04x: got %d bytes", b, len(data)).
				Build()
		}
		copy(dst.Block(b), data)
	}

	// Keys read back masked; take them from the auth image.
	dst.SetKey(tag.KeyA, header, auth.Key(tag.KeyA, header))
	dst.SetKey(tag.KeyB, header, auth.Key(tag.KeyB, header))
	return nil
}

func clearSector(t *tag.Tag, header int) {
	for b := header; b <= tag.BlockToTrailer(header); b++ {
		clear(t.Block(b))
	}
}
