/*
Package screen serves mutable screens from a ports.DocumentStore.

A Manager keeps a single writer per screen: every Put, Patch and Delete for a
name runs under that name's lock (load, decode, mutate, encode, save), so
concurrent patches never lose each other's updates. Locks are reference
counted and dropped once idle. An optional ports.DistributedLocker extends the
guarantee across processes sharing one store.

Subscribers receive every applied change, which is how the HTTP adapter
streams patches to connected clients.
*/
package screen
