// Package analytics turns an append-only ledger of account transactions and
// historical prices into performance metrics, risk metrics, debt-payoff
// projections, amortization schedules and tax-lot insights.
//
// The root package holds the data model shared by every engine:
//   - Entry and EntryType: immutable ledger records, ordered by date and then
//     by insertion order.
//   - Holding: the current, derived state of a position. It is never the
//     source of truth for history; the ledger is.
//   - PricePoint and Debt: market and liability inputs.
//   - Quantity, Money and Percent: exact value types.
//   - Outcome: the tagged result of an iterative computation, so that "could
//     not compute" is never confused with a true zero.
//
// Engines live in subpackages (reconstruct, performance, risk, amortization,
// payoff, tax) and read their inputs through the narrow Source interfaces
// defined here. They never write, and they never fetch live prices.
package analytics
