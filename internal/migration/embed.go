package migration

import "embed"

//go:embed migrations
var embeddedMigrations embed.FS

const migrationsRoot = "migrations"
