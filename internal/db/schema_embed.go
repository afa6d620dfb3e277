package db

import _ "embed"

// Schema holds the bootstrap SQL applied on startup.
//
//go:embed schema.sql
var Schema string
