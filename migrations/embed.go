// Package migrations содержит SQL-миграции журнала бронирований,
// вшитые в бинарник
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
