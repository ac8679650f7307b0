// Package memledger is an in-memory stand-in for the PostgreSQL circulation engine.
//
// It offers the same read methods and the same WithinTx/LedgerTx contract: transactions are serialized
// by one mutex and a failing transaction restores the state it started from. Errors can be injected per
// operation to exercise retry and failure paths of the handlers without a database.
package memledger
