/*
Package session serializes access to stored documents.

A Manager loads a document into an editor, applies an edit and writes the
result back while holding a per-document lock, so concurrent edits of the
same document never overwrite each other. With a DistributedLocker (see
pkg/adapters/redis) the guarantee extends across replicas sharing a store.
*/
package session
