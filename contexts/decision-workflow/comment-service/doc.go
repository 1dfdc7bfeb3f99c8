// Package commentservice manages decision discussion threads: one level
// of reply nesting, author-only edit and delete.
package commentservice
