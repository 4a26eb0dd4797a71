// Package domain defines the record types and store contracts for persisted
// Olm/Megolm session state. It contains plain types (rows/state) and
// contracts (interfaces) only.
package domain
