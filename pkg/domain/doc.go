/*
Package domain contains the core models of the leadchat dialog engine.

It defines the scripted conversation graph, the transcript produced while a
visitor walks it, and the lead captured at the end. The package is pure: no
I/O, no persistence, no transport.

# Key Entities

  - Node: one step of the script (message, options, lead capture flag).
  - Graph: the validated, immutable set of nodes with a designated entry.
  - TranscriptEntry: one bot or user bubble, append-only.
  - Conversation: the serialisable snapshot of a running engine.
  - LeadRecord: contact fields plus the path taken through the graph.
*/
package domain
