/*
Engine implements the strategy decision core.

# Module
  - order book store: validates sequence numbers and holds the latest snapshot per instrument
  - arbitrage detector: fires fill-and-kill orders into transient cross-instrument mispricing
  - quoting engine: maintains an inventory-skewed two-sided ETF quote
  - position ledger: integer lot counts per (instrument, strategy) partition
  - compliance gate: projects position deltas and blocks limit breaches before the gateway
  - order registry: tracks working orders and drives hedge issuance on fills

# Source
 1. market data & order lifecycle events from the exchange gateway adapter
 2. journal replay from the recorder

# Produce
  - insert/cancel/hedge commands to the gateway

# Threading
  - single consumer: handlers run to completion strictly in arrival order
*/
package engine
