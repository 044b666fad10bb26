// Package migrations holds the schema: SQL files shared by every driver plus
// Go migrations for DDL whose syntax differs between them.
package migrations

import "github.com/pressly/goose/v3"

var dialect goose.Dialect

// SetDialect selects the DDL variant the Go migrations emit. The db package
// sets it before running migrations.
func SetDialect(d goose.Dialect) { dialect = d }
