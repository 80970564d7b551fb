// Package models defines the core domain models for Comanda.
//
// # Models
//
//   - Category, Item: the menu catalog. The catalog is owned by the admin
//     surface; the ordering core only ever reads it.
//   - Order, OrderLine: a customer order with immutable per-line price
//     snapshots taken at creation time.
//   - Member, MemberTab: registered members and their monthly running
//     balances ("tabs") for account-billed orders.
//   - Event: the envelope broadcast to restaurant dashboards.
//
// # Money
//
// All amounts are shopspring decimals with two fractional digits. An order's
// total is computed once at creation from the line snapshots and is never
// recomputed from current catalog prices. The SQLite layer persists amounts
// as integer cents so that balance increments can happen atomically in SQL.
package models
