// Package core provides the business logic behind type sniffing: token
// classification, datetime recognition, table dialect inference, JSON schema
// inference and INI loading, plus the optional Postgres ingest and profile
// store. This package has no transport dependencies and can be used by any
// frontend.
package core
