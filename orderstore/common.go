package orderstore

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")

// ErrStateConflict is returned when a status update did not match the expected prior status,
// which means the order was changed by someone else since it was read.
var ErrStateConflict = errors.New("state conflict, the order status no longer matches the expected status")

var ErrOrderNotFound = errors.New("order not found")
var ErrBuildingQueryFailed = errors.New("building the sql query failed")
var ErrQueryingOrdersFailed = errors.New("querying orders failed")
var ErrScanningDBRowFailed = errors.New("scanning a db row failed")
var ErrWritingOrderFailed = errors.New("writing the order failed")
var ErrGettingRowsAffectedFailed = errors.New("getting the rows affected count failed")
var ErrTransactionFailed = errors.New("database transaction failed")
var ErrMigrationFailed = errors.New("schema migration failed")
