// Package redcoll exposes Redis collections as Go values.
//
// The container package holds the raw views (List, Set, SortedSet, Hash)
// that map each call onto one store command and keep nothing locally
// beyond the key and the executor. This package adds TypedList, a list
// proxy that converts elements on the way in and out:
//
//   - Plain element types go through a codec.Codec[T].
//   - Entity element types store only the entity id and resolve it back
//     through a model.Repository[T] on read.
//
// Entity lists are lenient on bulk reads: ids that no longer resolve are
// dropped, keeping the order of the rest. An indexed read of such an id
// reports ok=false instead.
//
// Executors are picked once at construction: an explicit pipeline wins
// over an explicit client, which wins over the process-wide default set
// with conn.SetDefault.
//
//	users, _ := redcoll.NewTypedList(redcoll.Options[User]{
//	    Key:  "team:7:members",
//	    Type: redcoll.Named[User]("User"),
//	})
//	for u, err := range users.Iter(ctx) {
//	    ...
//	}
//
// CachedRepository puts a revision-checked read-through cache in front
// of any repository, so lists of entities can resolve from a local
// provider instead of the store.
package redcoll
