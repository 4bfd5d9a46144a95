// Package ledger provides the core logic of a personal-finance tracker:
// balance reconciliation over a posting history and projection of recurring
// schedules. It is designed to be local-first and auditable, so computed
// balances always derive from a full replay of the recorded postings rather
// than from stored running totals.
//
// The core functionalities include:
//   - Ledger Projection: Deriving signed amounts, carry-over and closing
//     balances, period totals, and per-day series from posting snapshots.
//   - Recurring Schedules: Materializing dated occurrences from recurring
//     definitions and applying scoped edits and deletes (a single event, the
//     event and its successors, or the whole series).
//   - Transfers: Single-posting same-currency transfers and linked pairs of
//     one-sided legs for cross-currency moves, executed as sequential batches
//     without rollback.
//   - Investment Lots: Purchase and sale math over holdings, with realized
//     profit metadata attached to the resulting cash movements.
//   - Data Persistence: A storage contract implemented by the sqlstore
//     package and a human-readable JSONL import/export format.
//
// This package serves as the foundational logic for the `dinheiro`
// command-line tool, ensuring that all operations are consistent and based on
// a single source of truth.
package ledger
