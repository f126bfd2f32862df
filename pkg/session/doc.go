/*
Package session implements the session token lifecycle on top of a generic expiring
key/value store.

A session is a KV entry under "session:<token>" with a fixed TTL. Resuming a live
session never renews its expiry; an expired token is indistinguishable from an
unknown one. The Manager also exposes the raw key/value operations and a keyed
lock registry that callers use to serialize work per session.
*/
package session
