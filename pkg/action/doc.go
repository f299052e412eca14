/*
Package action routes the passive actions attached to nodes to host code.

Actions never run by themselves. A Dispatcher maps each action type to a
ports.ActionHandler; unknown types yield ErrNotActionable instead of a panic,
so renderers can still draw the node and simply mark it inert.

Interceptors run before the handler and may veto a dispatch, for example to
restrict openURL to https.
*/
package action
