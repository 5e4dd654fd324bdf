// Package models defines the core domain models for Splitty.
//
// # Records
//
// The following records are loaded by the host and handed to the calculator:
//   - Expense: a shared purchase or a settlement transfer, seen from the user's side
//   - Budget: per-category limits for one calendar month
//   - Category: a spending bucket; "general" always exists
//   - Friend: a counterparty with a signed running balance
//   - Group: a named set of members, used to filter the debt graph
//   - Preferences: hidden categories, category order and the rollover switch
//
// The user the data belongs to is always identified by SelfID ("self").
// Friends and groups are referenced by ID strings, never by pointer.
//
// # Money
//
// Every monetary value is a decimal.Decimal. Shares are derived with decimal
// division, so the same inputs always produce the same digits.
//
// # Split policy
//
// Expense.Split is a closed variant with two cases, EqualSplit and
// UnequalSplit. Per-participant amounts only exist on UnequalSplit, so code
// reading them has to switch on the concrete type first.
package models
