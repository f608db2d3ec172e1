// Package all registers every run-history backend. Blank-import it from a
// binary to make all backends selectable by kind.
package all

import (
	_ "datacompare/internal/runstore/mssql"
	_ "datacompare/internal/runstore/postgres"
	_ "datacompare/internal/runstore/sqlite"
)
