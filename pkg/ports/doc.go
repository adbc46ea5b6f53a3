/*
Package ports defines the driven ports (interfaces) for the joist engine.

These interfaces decouple the tree engine from its collaborators, allowing it to
work with various storage backends, component catalogs and rendering layers.

# Key Interfaces

  - DocumentStore: persists serialized documents.
  - DistributedLocker: serializes edits of a document across replicas.
  - Resolver: maps persisted type names to components on hydration.
  - DOMLookup / LayerLookup: the geometry collaborators used by drop placement.
  - HandlerRegistry: where drag-tracking handlers live for the duration of a drag.
*/
package ports
