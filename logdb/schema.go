// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// amounts are stored as 8-byte big-endian blobs since sqlite integers are signed.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	kind TEXT NOT NULL,
	asset BLOB NOT NULL,
	account BLOB NOT NULL,
	amount BLOB NOT NULL,
	principal BLOB NOT NULL,
	reward BLOB NOT NULL,
	stakedAmount BLOB NOT NULL,
	vaultClosed INTEGER NOT NULL,
	time INTEGER NOT NULL);

CREATE INDEX IF NOT EXISTS event_i0 ON event(asset, account);
CREATE INDEX IF NOT EXISTS event_i1 ON event(kind);`

const eventSelect = "SELECT seq, kind, asset, account, amount, principal, reward, stakedAmount, vaultClosed, time FROM event"

const eventInsert = "INSERT OR REPLACE INTO event(seq, kind, asset, account, amount, principal, reward, stakedAmount, vaultClosed, time) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
