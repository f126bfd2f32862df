/*
Package ports defines the driven ports (interfaces) of the Courier assistant.

These interfaces decouple the session manager and the conversation engine from the
concrete datastores, so the in-memory defaults can be replaced by Redis or DynamoDB
without touching business rules.

# Key Interfaces

  - KVStore: generic expiring key/value storage with lazy eviction on read.
  - ConversationStore: per-session dialogue state.
  - ClaimStore: write-once claim records.
  - PackageDirectory: read-only package status lookup.
  - ClaimNotifier: optional downstream notification of filed claims.

The Run*Contract helpers verify that an implementation honors these interfaces.
*/
package ports
