/*
Package types defines the core data structures shared by every Jari
component: the Todo record, its closed field schema, dependency and
conflict records, and the filters used by the query layer.

# Architecture

	┌──────────────────────── DATA MODEL ───────────────────────┐
	│                                                              │
	│   Todo (todos/{id})                                         │
	│     id, title, status, priority, assignee, labels...        │
	│     blocked_by ──────────┐                                  │
	│     version              │                                  │
	│                          ▼                                  │
	│   History (history/{id}/{version})      Graph (meta/blocks) │
	│     immutable snapshot per version        reverse edges      │
	│                                                              │
	│   PendingRead (pending/{agent}/{id})    Conflict             │
	│     agent's last-observed version        (meta/conflict/…)   │
	└──────────────────────────────────────────────────────────────┘

Fields are a closed, typed enum (Field) rather than a string-keyed map,
so Todo Service's update() dispatches on a fixed, compiler-checked set
of cases. Set-valued fields (labels, niwa_refs, blocked_by) carry add/
remove semantics through FieldChange.Op; scalar fields are replaced
wholesale via OpSet.
*/
package types
