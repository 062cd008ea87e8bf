// Package programs defines the handler capability each tracked program
// family exposes to the router, and the registry that maps owner identity
// to a handler.
//
// A handler owns both sides of its family: decoding raw account payloads
// into typed records, and applying the resulting facts (storage writes or
// async job dispatch). Payload disambiguation uses explicit tables - an
// exact byte-length table for account shapes and a leading opaque byte
// for instructions. Lengths and discriminators outside the tables are
// recognized-absence, not errors: tracked programs own many account
// shapes this mirror does not follow.
package programs
