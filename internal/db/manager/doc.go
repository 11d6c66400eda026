// Package manager builds and runs the server-level statements used to manage
// project databases.
//
// Statements are plain SQL text:
//
//	manager.CreateStatement("app_main")  // CREATE DATABASE app_main;
//	manager.DropStatement("App Main")    // DROP DATABASE IF EXISTS "App Main";
//
// Names that are plain lowercase identifiers and not reserved words are
// emitted bare. Everything else goes through pgx.Identifier.Sanitize, so
// names with spaces, quotes, capitals or semicolons cannot break out of the
// statement.
//
// CREATE DATABASE and DROP DATABASE cannot run inside a transaction block;
// callers must execute them in autocommit mode.
package manager
