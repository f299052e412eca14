/*
Package domain contains the core models of the canopy UI runtime.

It defines the declarative UI tree that servers send and clients draw. The
package holds data and pure helpers only; fetching, storage and drawing live
in the adapters.

# Key Entities

  - Node: One element of the tree (text, image, button, stack, spacer, list, scroll, textField, toggle).
  - Style: Optional presentation attributes. Absent means host default.
  - Color: ARGB colour parsed from hex strings by ParseColor.
  - Action: Passive intent (type plus string payload) attached to an interactive node.
  - Value: Tagged union for free-form properties.
  - Patch: A content or children replacement addressed by node id.
*/
package domain
