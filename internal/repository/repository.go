// Package repository handles all interactions with the database.
//
// It contains the SQL for each driver and exposes the ItemStore interface
// the service layer depends on.
package repository
