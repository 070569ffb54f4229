// Package state provides file-backed stores for durable local state: the
// session index and the scheduled task list. Conversation turns live in the
// memory package and raw query results in the auditstore package.
package state
