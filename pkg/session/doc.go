/*
Package session drives conversations for stateless hosts (HTTP, MCP).

Every operation loads the conversation snapshot from a ConversationStore,
replays it into a fresh engine, applies the operation and saves the result,
all under a per-session lock (process-local, optionally also distributed).
Lead delivery runs between two locked phases, so a concurrent Reset is never
blocked and a late delivery result is discarded.
*/
package session
