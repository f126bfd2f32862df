/*
Package domain contains the core models of the Courier assistant.

It is kept free of I/O: stores, transports and clocks live behind the ports package.

# Key Entities

  - Entry: a value with an optional expiry, the unit of the generic key/value facility.
  - Session: a live session token with its creation and expiry times.
  - Conversation: the dialogue step of one session plus its pending claim payload.
  - Claim: an immutable claim record filed for a lost package.
  - PackageStatus: the status reported by the package directory.
*/
package domain
