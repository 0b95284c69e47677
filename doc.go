// Package harvest computes the cost basis of a brokerage account and looks
// for tax-loss-harvesting opportunities. It works on a normalized transaction
// history and never touches the network or the file system.
//
// The core functionalities include:
//   - Lot Accounting: replaying buys and sells through FIFO lot queues to get
//     the open lots and the realized gain or loss of every sale
//     (ComputeFIFO). Selling more shares than held is reported, not fatal.
//   - Valuation: valuing open lots at a set of prices, possibly partial, into
//     positions and an unrealized summary (Valuate).
//   - Opportunities: listing positions at a loss that could be harvested,
//     flagged when a repurchase falls within the wash-sale window, and
//     positions at a gain that could balance them
//     (FindHarvestingOpportunities, FindBalancingOpportunities).
//   - Simulation: computing the net realized gain if a selection of
//     opportunities were sold (NetGainIfHarvested).
//
// Portfolio ties all of them together for interactive use. Amounts are
// exact decimals; they are only rounded when formatted.
//
// Holding periods are not classified yet: every realized gain is reported
// as ShortTerm.
//
// This package serves as the foundational logic for the `tlh` command-line
// tool.
package harvest
