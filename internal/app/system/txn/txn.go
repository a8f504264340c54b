// internal/app/system/txn/txn.go

// Package txn runs a function inside a MongoDB multi-document
// transaction, falling back to plain sequential execution when the
// server does not support transactions (standalone servers, old
// versions). Callers get atomicity where the deployment allows it and
// best-effort ordering everywhere else.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction on db's client. The fn receives
// a session-bound context; every collection operation made with it
// joins the transaction. If the server rejects transactions entirely,
// fn is re-run once outside a session.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions not supported by server; running writes sequentially")
		}
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions cannot be used at all
// (as opposed to a transient failure worth retrying).
//
//	20  IllegalOperation (e.g. "Transaction numbers are only allowed on
//	    a replica set member or mongos")
//	51  no such command / illegal operation variants
//	263 OperationNotSupportedInTransaction
var notSupportedCodes = map[int32]bool{20: true, 51: true, 263: true}

// Keyword fragments that, in combination, identify "transactions are
// not available here" errors coming back as plain strings.
var notSupportedKeywords = []string{
	"transaction",
	"session",
	"replica set",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions. A single keyword alone is too weak a
// signal; at least two must match.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && notSupportedCodes[cmdErr.Code] {
		return true
	}

	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
