// Package folio reconciles investment account snapshots against a
// transaction log, tracking tax lots and cost basis along the way. It is
// designed to be local-first and auditable: source data stays immutable,
// every derived number can be traced back to the records that produced
// it, and nothing suspicious is ever fixed silently.
//
// The core functionalities include:
//   - Normalization: Cleaning broker exports (CSV or JSON) into canonical
//     positions and transactions, tolerant of the naming and formatting
//     quirks of different institutions.
//   - Symbol Mapping: Resolving ticker renames, mergers and spinoffs so a
//     position's history survives a symbol change.
//   - Lot Tracking: A tax lot engine with FIFO, LIFO and specific-lot
//     consumption, proportional cost basis allocation, and split
//     adjustments applied atomically across a security's lots.
//   - Change Analysis: Diffing consecutive snapshots into acquisitions,
//     dispositions and quantity changes, inferring likely ticker changes
//     from matching quantities.
//   - Discrepancy Detection: Cross-checking snapshots, changes and the
//     transaction log; every inconsistency becomes a graded finding for
//     review, optionally with a proposed interpolated transaction.
//   - Persistence: Encoding the working set to a human-readable JSONL
//     file that diffs cleanly under version control.
//
// This package is the foundational logic for the `flo` command-line tool.
package folio
