// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/stakevault/builtin/staker"
)

// EventSource publishes committed engine events.
type EventSource interface {
	SubscribeEvents(ch chan<- *staker.Event) event.Subscription
}

const followBufferSize = 256

// Follow writes every event published by src until ctx is done or the
// subscription ends. Events queued at the same time are written in one
// transaction.
func (db *LogDB) Follow(ctx context.Context, src EventSource) error {
	ch := make(chan *staker.Event, followBufferSize)
	sub := src.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	w := db.NewWriter()
	write := func(first *staker.Event) error {
		batch := []*staker.Event{first}
	drain:
		for len(batch) < followBufferSize {
			select {
			case ev := <-ch:
				batch = append(batch, ev)
			default:
				break drain
			}
		}
		if err := w.Write(batch...); err != nil {
			_ = w.Rollback()
			return err
		}
		return w.Commit()
	}

	logger.Debug("following engine events", "path", db.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			if err := write(ev); err != nil {
				logger.Error("failed to write events", "err", err)
				return err
			}
		case err, ok := <-sub.Err():
			if !ok {
				return nil
			}
			return err
		}
	}
}
