/*
Package conversation implements the claim dialogue of the Courier assistant.

The Engine validates the caller's session, loads the per-session Conversation,
applies one transition for each free-text message and persists the next state.
Direct queries (Track, Status, FileClaim, Claim) reuse the same lookup and
eligibility rules without reading or advancing the dialogue.

# Failure model

User mistakes never fail a call: the Reply carries an ErrorTag and the dialogue
stays put or falls back to awaiting a tracking number. Calls made without a live
session fail with an *Error of KindUnauthorized and leave every store untouched.
*/
package conversation
