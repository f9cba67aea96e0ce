// Package window derives the bounded trailing view of the history table.
//
// Project keeps each row's first three cells plus its trailing day cells,
// 35 by default, and recomputes the average slot of every data row over just
// those windowed cells. That average is independent of the persistent one: a
// 35-day mean, not an all-time mean. Metadata rows pass through truncated
// but otherwise untouched, rows of decommissioned sites are dropped, and the
// table's row order is preserved.
package window
