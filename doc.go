// Package matchengine is an in-memory vector similarity engine for
// matching talent profiles against role descriptions.
//
// Records are dense float32 vectors with typed metadata. Queries rank
// by cosine similarity and filter on exact metadata equality. The index
// is safe for concurrent use: readers never block and writers never
// tear a read.
//
// # Vector API (bring your own embeddings)
//
//	eng, _ := matchengine.New(matchengine.WithDimension(1024))
//	defer eng.Close()
//	_ = eng.Upsert(matchengine.Record{
//	    ID:     "cand-42",
//	    Vector: vec,
//	    Metadata: matchengine.Metadata{"city": "Mumbai", "skills": []string{"go", "sql"}},
//	})
//	hits, _ := eng.Query(ctx, queryVec, 10, matchengine.Filter{"city": "Mumbai"})
//
// # Text API (embeddings handled by the engine)
//
//	eng, _ := matchengine.New(
//	    matchengine.WithOpenAI(matchengine.OpenAIConfig{APIKey: key}),
//	    matchengine.WithRedisCache("localhost:6379", ""),
//	)
//	_ = eng.UpsertProfile(ctx, "cand-42", profileText, meta)
//	hits, _ := eng.MatchToRole(ctx, roleText, []string{"go", "distributed systems"}, 10)
package matchengine
