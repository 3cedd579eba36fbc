package reader

import (
	"context"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"go.uber.org/zap"

	"github.com/wippyai/mfterm/errors"
	"github.com/wippyai/mfterm/tag"
)

const pollInterval = 500 * time.Millisecond

// Reader is a connected PC/SC reader with a card present.
type Reader struct {
	sctx *scard.Context
	card *scard.Card
	name string
}

// Open connects to the first reader whose name contains name (any reader
// if name is empty) and waits for a card until ctx is done.
func Open(ctx context.Context, name string) (*Reader, error) {
	sctx, err := scard.EstablishContext()
	if err != nil {
		return nil, errors.IO(errors.PhaseDevice, "establish PC/SC context", err)
	}

	reader, err := pickReader(sctx, name)
	if err != nil {
		sctx.Release()
		return nil, err
	}
	Logger().Debug("using reader", zap.String("reader", reader))

	if err := waitForCard(ctx, sctx, reader); err != nil {
		sctx.Release()
		return nil, err
	}

	card, err := sctx.Connect(reader, scard.ShareExclusive, scard.ProtocolAny)
	if err != nil {
		sctx.Release()
		return nil, errors.IO(errors.PhaseDevice, "connect to card on "+reader, err)
	}

	return &Reader{sctx: sctx, card: card, name: reader}, nil
}

// Name returns the PC/SC reader name.
func (r *Reader) Name() string {
	return r.name
}

// Close disconnects the card and releases the PC/SC context.
func (r *Reader) Close() error {
	var first error
	if r.card != nil {
		if err := r.card.Disconnect(scard.LeaveCard); err != nil {
			first = errors.IO(errors.PhaseDevice, "disconnect", err)
		}
		r.card = nil
	}
	if r.sctx != nil {
		if err := r.sctx.Release(); err != nil && first == nil {
			first = errors.IO(errors.PhaseDevice, "release PC/SC context", err)
		}
		r.sctx = nil
	}
	return first
}

// UID returns the UID of the card in the field.
func (r *Reader) UID() ([]byte, error) {
	return readUID(r.card)
}

// ReadTag reads every sector of a tag of the given size, authenticating
// with keys of type kt taken from auth.
func (r *Reader) ReadTag(ctx context.Context, auth *tag.Tag, kt tag.KeyType, size tag.Size) (*Result, error) {
	if r.card == nil {
		return nil, errors.NotInitialized(errors.PhaseDevice, "reader")
	}
	return ReadTag(ctx, r.card, auth, kt, size)
}

func pickReader(sctx *scard.Context, name string) (string, error) {
	readers, err := sctx.ListReaders()
	if err != nil {
		return "", errors.IO(errors.PhaseDevice, "list readers", err)
	}
	for _, rd := range readers {
		if name == "" || strings.Contains(rd, name) {
			return rd, nil
		}
	}
	if name == "" {
		return "", errors.NotFound(errors.PhaseDevice, "PC/SC reader", "any")
	}
	return "", errors.NotFound(errors.PhaseDevice, "PC/SC reader", name)
}

func waitForCard(ctx context.Context, sctx *scard.Context, reader string) error {
	rs := []scard.ReaderState{{Reader: reader, CurrentState: scard.StateUnaware}}
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.PhaseDevice, errors.KindNotFound, err, "no card presented")
		}
		err := sctx.GetStatusChange(rs, pollInterval)
		if err != nil && err != scard.ErrTimeout {
			return errors.IO(errors.PhaseDevice, "wait for card", err)
		}
		st := rs[0].EventState
		rs[0].CurrentState = st
		if st&scard.StatePresent != 0 {
			return nil
		}
	}
}
