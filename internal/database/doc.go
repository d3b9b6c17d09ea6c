// Package database owns the two sqlite stores and their schema migration.
//
// The primary store holds books, users, borrowings, settings and activities;
// the submissions store holds ratings, contact submissions and notifications.
// Both are opened once at boot and injected into the repositories under
// database/...; nothing in this module holds package-level handles.
package database
