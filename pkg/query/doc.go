/*
Package query implements read-only views
over the store — the ready and blocked queues, filtered listing,
substring search, history playback, and per-agent status — all
derived on every call from edges and statuses rather than cached, so
cascading unblock after a close is a property of evaluation order, not
a stored bit.
*/
package query
