// Package db embeds the goose SQL migrations.
package db

import "embed"

// Migrations holds migrations/*.sql; goose reads it with dir "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
