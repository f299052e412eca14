/*
Package ports defines the driven ports (interfaces) of the canopy runtime.

These interfaces decouple the core from external implementations, so the same
loader and screen manager work with any storage backend or network source.

# Key Interfaces

  - Source: Fetches raw UI payloads by name (Loam, FS, Redis, S3, HTTP, Memory).
  - DocumentStore: A Source that can also save, delete and list payloads.
  - Watchable: Reports changed resources for hot reload.
  - DistributedLocker: Serialises writers of one screen across replicas.
  - ActionHandler: Host side effect for one action type.
*/
package ports
