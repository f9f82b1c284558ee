// Package model declares the entities of the archive: people and their
// groups, users, scanned documents, and the accounting entries booked
// against them.
//
// JSON field names match column names, so a rendered row can be joined with
// the foreign-key labels of its table.
package model
