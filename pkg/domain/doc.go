/*
Package domain contains the core domain models of the joist tree engine.

It defines the editable document: nodes, canvases, linked canvases, the
editing-state layer (selected, hovered, dragged and the drop indicator) and
the error taxonomy. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node: a record of the tree. Its Payload is either a CanvasPayload (a drop zone
    owning an ordered child list) or a LeafPayload.
  - Rules: per-node predicates consulted when dragging and dropping.
  - EventsState / Indicator: the editing state consumed by the rendering layer.
  - SerializedNode: the persisted form, keyed by node id.
  - Error: structured errors carrying a Kind and, for drag and drop, a Reason.
*/
package domain
