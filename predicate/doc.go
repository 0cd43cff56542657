// Package predicate implements the predicate algebra used to query tables.
//
// A predicate is an immutable tree of three node families:
//
//   - primitives, resolvable against an index (IndexEqual)
//   - composites (And, Or, Not) and verification leaves (Compare)
//   - resolved candidate sets (Result)
//
// Query resolution repeatedly takes the left-most primitive (FirstPrimitive),
// resolves it to an id set and substitutes a Result for it (Simplify).
// Composites collapse as their children resolve: an And whose children are
// Results or verification-only subtrees becomes the intersection of the
// Results; an Or of Results only becomes their union. Not never collapses.
//
// Resolution only narrows the candidate set. Every fetched document is
// checked against the original predicate with Matches, so hash collisions
// and verification leaves never leak into results.
package predicate
