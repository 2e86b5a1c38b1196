package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	wvmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
)

func TestNewValidatesAddress(t *testing.T) {
	testCases := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", false},
		{"valid https", "https://weaviate.internal:443", false},
		{"missing scheme", "localhost:8080", true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := repository.New(tc.addr)
			if tc.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, model.ErrTagConfig))
				return
			}
			gt.NoError(t, err)
			gt.V(t, store).NotNil()
		})
	}
}

func TestRecordGetters(t *testing.T) {
	rec := repository.Record{
		ID: model.RecordID("0e72afc5-4b43-4c0a-bd4b-07b923a1e934"),
		Props: map[string]any{
			"content":   "faith and family",
			"category":  "faith",
			"timestamp": "2025-06-11T20:15:04Z",
			"count":     float64(3),
		},
	}

	gt.Equal(t, rec.Str("content"), "faith and family")
	gt.Equal(t, rec.Str("missing"), "")
	gt.Equal(t, rec.Str("count"), "")

	ts := rec.Time("timestamp")
	gt.Equal(t, ts.Year(), 2025)
	gt.Equal(t, ts.Month(), time.June)
	gt.True(t, rec.Time("content").IsZero())
	gt.True(t, rec.Time("missing").IsZero())
}

func TestDecodeRecords(t *testing.T) {
	resp := &wvmodels.GraphQLResponse{
		Data: map[string]wvmodels.JSONObject{
			"Get": map[string]any{
				"LegacyKnowledge": []any{
					map[string]any{
						"content":  "Trust is earned in drops",
						"category": "philosophy",
						"source":   "RAG.md",
						"_additional": map[string]any{
							"id": "8d6c11de-5f41-4c77-9fc3-3a1a01fa4be2",
						},
					},
					map[string]any{
						"content":  "The shop closes at six",
						"category": "general",
						"source":   "RAG.md",
					},
				},
			},
		},
	}

	records := repository.DecodeRecordsForTest(resp, "LegacyKnowledge")
	gt.A(t, records).Length(2)
	gt.Equal(t, records[0].ID, model.RecordID("8d6c11de-5f41-4c77-9fc3-3a1a01fa4be2"))
	gt.Equal(t, records[0].Str("category"), "philosophy")
	gt.Equal(t, records[1].ID, model.RecordID(""))
	gt.Equal(t, records[1].Str("content"), "The shop closes at six")
}

func TestDecodeRecordsEmptyPayload(t *testing.T) {
	resp := &wvmodels.GraphQLResponse{Data: map[string]wvmodels.JSONObject{}}
	gt.A(t, repository.DecodeRecordsForTest(resp, "LegacyKnowledge")).Length(0)

	resp = &wvmodels.GraphQLResponse{
		Data: map[string]wvmodels.JSONObject{
			"Get": map[string]any{"Conversation": []any{}},
		},
	}
	gt.A(t, repository.DecodeRecordsForTest(resp, "LegacyKnowledge")).Length(0)
}

func TestDecodeMetaCount(t *testing.T) {
	resp := &wvmodels.GraphQLResponse{
		Data: map[string]wvmodels.JSONObject{
			"Aggregate": map[string]any{
				"CrisisLog": []any{
					map[string]any{
						"meta": map[string]any{"count": float64(42)},
					},
				},
			},
		},
	}

	gt.Equal(t, repository.DecodeMetaCountForTest(resp, "CrisisLog"), 42)
	gt.Equal(t, repository.DecodeMetaCountForTest(resp, "Conversation"), 0)
}

func TestDecodeGroupedCount(t *testing.T) {
	resp := &wvmodels.GraphQLResponse{
		Data: map[string]wvmodels.JSONObject{
			"Aggregate": map[string]any{
				"LegacyKnowledge": []any{
					map[string]any{
						"groupedBy": map[string]any{"value": "faith"},
						"meta":      map[string]any{"count": float64(12)},
					},
					map[string]any{
						"groupedBy": map[string]any{"value": "family"},
						"meta":      map[string]any{"count": float64(7)},
					},
				},
			},
		},
	}

	counts := repository.DecodeGroupedCountForTest(resp, "LegacyKnowledge")
	gt.Map(t, counts).HasKey("faith")
	gt.Map(t, counts).HasKey("family")
	gt.Equal(t, counts["faith"], 12)
	gt.Equal(t, counts["family"], 7)
}

func TestBuildWhere(t *testing.T) {
	t.Run("no conditions", func(t *testing.T) {
		gt.Nil(t, repository.BuildWhereForTest(nil))
	})

	t.Run("single condition", func(t *testing.T) {
		where := repository.BuildWhereForTest([]repository.Condition{
			{Field: "category", Value: "faith"},
		})
		gt.V(t, where).NotNil()
		clause := where.String()
		gt.S(t, clause).Contains("category")
		gt.S(t, clause).Contains("faith")
		gt.S(t, clause).Contains("Equal")
	})

	t.Run("conditions are AND-combined", func(t *testing.T) {
		where := repository.BuildWhereForTest([]repository.Condition{
			{Field: "mode", Value: "logibot"},
			{Field: "session_id", Value: "session_ab12cd34"},
		})
		gt.V(t, where).NotNil()
		clause := where.String()
		gt.S(t, clause).Contains("And")
		gt.S(t, clause).Contains("mode")
		gt.S(t, clause).Contains("session_id")
	})
}

// Integration tests below require a running Weaviate instance.

func setupWeaviate(t *testing.T) *repository.Weaviate {
	addr := os.Getenv("TEST_WEAVIATE_ADDR")
	if addr == "" {
		t.Skip("TEST_WEAVIATE_ADDR must be set to run Weaviate tests")
	}

	store, err := repository.New(addr)
	gt.NoError(t, err)

	ctx := context.Background()
	if !store.Ready(ctx) {
		t.Skip("Weaviate instance is not ready")
	}
	gt.NoError(t, store.EnsureSchema(ctx))

	return store
}

func TestWeaviateInsertAndSearch(t *testing.T) {
	store := setupWeaviate(t)
	ctx := context.Background()

	marker := uuid.NewString()
	id, err := store.Insert(ctx, repository.CollectionKnowledge, map[string]any{
		"content":  fmt.Sprintf("integration marker %s about woodworking", marker),
		"category": "technical",
		"source":   "weaviate_test",
	})
	gt.NoError(t, err)
	gt.NotEqual(t, id, model.RecordID(""))

	// Give the index a moment to pick up the new object
	time.Sleep(500 * time.Millisecond)

	records, err := store.Search(ctx, repository.Query{
		Collection: repository.CollectionKnowledge,
		Match:      &repository.Match{Field: "content", Text: marker},
		Fields:     []string{"content", "category", "source"},
		Limit:      5,
	})
	gt.NoError(t, err)
	gt.A(t, records).Longer(0)
	gt.S(t, records[0].Str("content")).Contains(marker)
}

func TestWeaviateFilteredSearch(t *testing.T) {
	store := setupWeaviate(t)
	ctx := context.Background()

	session := model.NewSessionID()
	for _, msg := range []string{"first filtered message", "second filtered message"} {
		_, err := store.Insert(ctx, repository.CollectionConversation, map[string]any{
			"message":    msg,
			"role":       "user",
			"mode":       "logibot",
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"session_id": string(session),
		})
		gt.NoError(t, err)
	}

	time.Sleep(500 * time.Millisecond)

	records, err := store.Search(ctx, repository.Query{
		Collection: repository.CollectionConversation,
		Where: []repository.Condition{
			{Field: "mode", Value: "logibot"},
			{Field: "session_id", Value: string(session)},
		},
		SortDesc: "timestamp",
		Fields:   []string{"message", "role", "mode", "timestamp", "session_id"},
		Limit:    10,
	})
	gt.NoError(t, err)
	gt.A(t, records).Length(2)
	for _, rec := range records {
		gt.Equal(t, rec.Str("session_id"), string(session))
	}
}

func TestWeaviateCount(t *testing.T) {
	store := setupWeaviate(t)
	ctx := context.Background()

	count, err := store.Count(ctx, repository.CollectionKnowledge, nil)
	gt.NoError(t, err)
	gt.Number(t, count).GreaterOrEqual(0)

	grouped, err := store.CountGrouped(ctx, repository.CollectionKnowledge, "category")
	gt.NoError(t, err)
	gt.V(t, grouped).NotNil()
}

func TestWeaviateUnreachable(t *testing.T) {
	// Port 1 should refuse connections on any sane host
	store, err := repository.New("http://127.0.0.1:1")
	gt.NoError(t, err)

	ctx := context.Background()
	_, err = store.Search(ctx, repository.Query{
		Collection: repository.CollectionKnowledge,
		Match:      &repository.Match{Field: "content", Text: "anything"},
		Fields:     []string{"content"},
		Limit:      1,
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, model.ErrTagStorageUnavailable))

	gt.False(t, store.Ready(ctx))
}
