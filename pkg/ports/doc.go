/*
Package ports defines the driven ports (interfaces) for the leadchat engine.

These interfaces decouple the dialog engine from external implementations, allowing
it to work with various graph sources, conversation stores, and lead relays.

# Key Interfaces

  - GraphLoader: Responsible for loading Node definitions (e.g., from YAML, Loam or Memory).
  - ConversationStore: Responsible for persisting and loading Conversation snapshots.
  - LeadDeliverer: Hands a captured lead to the external form relay.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
