package repository

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	wvmodels "github.com/weaviate/weaviate/entities/models"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

// Weaviate implements Store against a Weaviate instance
type Weaviate struct {
	client  *weaviate.Client
	timeout time.Duration
}

type Option func(*Weaviate)

// WithTimeout sets the per-call deadline applied to every store operation.
// One hung call must not stall a whole search fan-out.
func WithTimeout(d time.Duration) Option {
	return func(w *Weaviate) {
		w.timeout = d
	}
}

// New creates a Store backed by the Weaviate instance at addr,
// e.g. http://localhost:8080.
func New(addr string, opts ...Option) (*Weaviate, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid store address", goerr.T(model.ErrTagConfig), goerr.V("addr", addr))
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, goerr.New("store address must include scheme and host", goerr.T(model.ErrTagConfig), goerr.V("addr", addr))
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Scheme: u.Scheme,
		Host:   u.Host,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create weaviate client", goerr.T(model.ErrTagConfig))
	}

	w := &Weaviate{
		client:  client,
		timeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

func (w *Weaviate) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, w.timeout)
}

// storageTag distinguishes a store that answered with an error from one that
// could not be reached at all.
func storageTag(err error) goerr.Tag {
	var clientErr *fault.WeaviateClientError
	if errors.As(err, &clientErr) && clientErr.StatusCode > 0 {
		return model.ErrTagStorageQuery
	}
	return model.ErrTagStorageUnavailable
}

func (w *Weaviate) Search(ctx context.Context, q Query) ([]Record, error) {
	if q.Collection == "" {
		return nil, goerr.New("query collection is empty", goerr.T(model.ErrTagStorageQuery))
	}

	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	fields := make([]graphql.Field, 0, len(q.Fields)+1)
	for _, f := range q.Fields {
		fields = append(fields, graphql.Field{Name: f})
	}
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})

	builder := w.client.GraphQL().Get().
		WithClassName(q.Collection).
		WithFields(fields...)

	if q.Match != nil {
		builder = builder.WithBM25(w.client.GraphQL().Bm25ArgBuilder().
			WithQuery(q.Match.Text).
			WithProperties(q.Match.Field))
	}
	if where := buildWhere(q.Where); where != nil {
		builder = builder.WithWhere(where)
	}
	if q.SortDesc != "" {
		builder = builder.WithSort(graphql.Sort{
			Path:  []string{q.SortDesc},
			Order: graphql.Desc,
		})
	}
	if q.Limit > 0 {
		builder = builder.WithLimit(q.Limit)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query store",
			goerr.T(storageTag(err)), goerr.V("collection", q.Collection))
	}
	if len(resp.Errors) > 0 {
		return nil, goerr.New("store rejected query",
			goerr.T(model.ErrTagStorageQuery),
			goerr.V("collection", q.Collection),
			goerr.V("errors", graphqlErrors(resp.Errors)))
	}

	return decodeRecords(resp, q.Collection), nil
}

func (w *Weaviate) Insert(ctx context.Context, collection string, props map[string]any) (model.RecordID, error) {
	if collection == "" {
		return "", goerr.New("insert collection is empty", goerr.T(model.ErrTagStorageQuery))
	}

	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	created, err := w.client.Data().Creator().
		WithClassName(collection).
		WithProperties(props).
		Do(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to insert record",
			goerr.T(storageTag(err)), goerr.V("collection", collection))
	}

	return model.RecordID(created.Object.ID), nil
}

func (w *Weaviate) Count(ctx context.Context, collection string, where []Condition) (int, error) {
	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	builder := w.client.GraphQL().Aggregate().
		WithClassName(collection).
		WithFields(graphql.Field{
			Name:   "meta",
			Fields: []graphql.Field{{Name: "count"}},
		})
	if cond := buildWhere(where); cond != nil {
		builder = builder.WithWhere(cond)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count records",
			goerr.T(storageTag(err)), goerr.V("collection", collection))
	}
	if len(resp.Errors) > 0 {
		return 0, goerr.New("store rejected count",
			goerr.T(model.ErrTagStorageQuery),
			goerr.V("collection", collection),
			goerr.V("errors", graphqlErrors(resp.Errors)))
	}

	return decodeMetaCount(resp, collection), nil
}

func (w *Weaviate) CountGrouped(ctx context.Context, collection, field string) (map[string]int, error) {
	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	resp, err := w.client.GraphQL().Aggregate().
		WithClassName(collection).
		WithGroupBy(field).
		WithFields(
			graphql.Field{Name: "groupedBy", Fields: []graphql.Field{{Name: "value"}}},
			graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}},
		).
		Do(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count grouped records",
			goerr.T(storageTag(err)), goerr.V("collection", collection), goerr.V("field", field))
	}
	if len(resp.Errors) > 0 {
		return nil, goerr.New("store rejected grouped count",
			goerr.T(model.ErrTagStorageQuery),
			goerr.V("collection", collection),
			goerr.V("errors", graphqlErrors(resp.Errors)))
	}

	return decodeGroupedCount(resp, collection), nil
}

func (w *Weaviate) Ready(ctx context.Context) bool {
	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	ready, err := w.client.Misc().ReadyChecker().Do(ctx)
	return err == nil && ready
}

func (w *Weaviate) EnsureSchema(ctx context.Context) error {
	for _, class := range collectionSchemas() {
		if err := w.ensureClass(ctx, class); err != nil {
			return err
		}
	}
	return nil
}

func (w *Weaviate) ensureClass(ctx context.Context, class *wvmodels.Class) error {
	ctx, cancel := w.withDeadline(ctx)
	defer cancel()

	exists, err := w.client.Schema().ClassExistenceChecker().
		WithClassName(class.Class).
		Do(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to check collection",
			goerr.T(storageTag(err)), goerr.V("collection", class.Class))
	}
	if exists {
		return nil
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return goerr.Wrap(err, "failed to create collection",
			goerr.T(storageTag(err)), goerr.V("collection", class.Class))
	}

	return nil
}

// collectionSchemas returns the class definitions for all corpora. Objects
// carry no vectors; relevance search runs on BM25 only.
func collectionSchemas() []*wvmodels.Class {
	text := []string{"text"}
	date := []string{"date"}

	return []*wvmodels.Class{
		{
			Class:      CollectionKnowledge,
			Vectorizer: "none",
			Properties: []*wvmodels.Property{
				{Name: "content", DataType: text},
				{Name: "category", DataType: text},
				{Name: "source", DataType: text},
			},
		},
		{
			Class:      CollectionMemory,
			Vectorizer: "none",
			Properties: []*wvmodels.Property{
				{Name: "content", DataType: text},
				{Name: "session_date", DataType: text},
				{Name: "session_file", DataType: text},
				{Name: "section", DataType: text},
				{Name: "imported_at", DataType: date},
			},
		},
		{
			Class:      CollectionConversation,
			Vectorizer: "none",
			Properties: []*wvmodels.Property{
				{Name: "message", DataType: text},
				{Name: "role", DataType: text},
				{Name: "mode", DataType: text},
				{Name: "timestamp", DataType: date},
				{Name: "session_id", DataType: text},
			},
		},
		{
			Class:      CollectionCrisis,
			Vectorizer: "none",
			Properties: []*wvmodels.Property{
				{Name: "input_text", DataType: text},
				{Name: "severity", DataType: text},
				{Name: "timestamp", DataType: date},
			},
		},
	}
}

// buildWhere turns equality conditions into the client's filter builder.
// A single condition stays flat; multiple conditions nest under an And
// operator.
func buildWhere(conds []Condition) *filters.WhereBuilder {
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return filters.Where().
			WithPath([]string{conds[0].Field}).
			WithOperator(filters.Equal).
			WithValueText(conds[0].Value)
	default:
		operands := make([]*filters.WhereBuilder, 0, len(conds))
		for _, cond := range conds {
			operands = append(operands, filters.Where().
				WithPath([]string{cond.Field}).
				WithOperator(filters.Equal).
				WithValueText(cond.Value))
		}
		return filters.Where().
			WithOperator(filters.And).
			WithOperands(operands)
	}
}

func graphqlErrors(errs []*wvmodels.GraphQLError) []string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func decodeRecords(resp *wvmodels.GraphQLResponse, collection string) []Record {
	data, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil
	}
	rows, ok := data[collection].([]any)
	if !ok {
		return nil
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		props, ok := row.(map[string]any)
		if !ok {
			continue
		}

		rec := Record{Props: props}
		if additional, ok := props["_additional"].(map[string]any); ok {
			if id, ok := additional["id"].(string); ok {
				rec.ID = model.RecordID(id)
			}
		}
		records = append(records, rec)
	}

	return records
}

func aggregateRows(resp *wvmodels.GraphQLResponse, collection string) []any {
	data, ok := resp.Data["Aggregate"].(map[string]any)
	if !ok {
		return nil
	}
	rows, _ := data[collection].([]any)
	return rows
}

func metaCount(row map[string]any) int {
	meta, ok := row["meta"].(map[string]any)
	if !ok {
		return 0
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0
	}
	return int(count)
}

func decodeMetaCount(resp *wvmodels.GraphQLResponse, collection string) int {
	rows := aggregateRows(resp, collection)
	if len(rows) == 0 {
		return 0
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		return 0
	}
	return metaCount(row)
}

func decodeGroupedCount(resp *wvmodels.GraphQLResponse, collection string) map[string]int {
	counts := make(map[string]int)
	for _, raw := range aggregateRows(resp, collection) {
		row, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		grouped, ok := row["groupedBy"].(map[string]any)
		if !ok {
			continue
		}
		value, ok := grouped["value"].(string)
		if !ok {
			continue
		}
		counts[value] = metaCount(row)
	}
	return counts
}

// Test helpers - exported versions of private functions for testing

// DecodeRecordsForTest is a test helper that exposes decodeRecords
func DecodeRecordsForTest(resp *wvmodels.GraphQLResponse, collection string) []Record {
	return decodeRecords(resp, collection)
}

// DecodeMetaCountForTest is a test helper that exposes decodeMetaCount
func DecodeMetaCountForTest(resp *wvmodels.GraphQLResponse, collection string) int {
	return decodeMetaCount(resp, collection)
}

// DecodeGroupedCountForTest is a test helper that exposes decodeGroupedCount
func DecodeGroupedCountForTest(resp *wvmodels.GraphQLResponse, collection string) map[string]int {
	return decodeGroupedCount(resp, collection)
}

// BuildWhereForTest is a test helper that exposes buildWhere
func BuildWhereForTest(conds []Condition) *filters.WhereBuilder {
	return buildWhere(conds)
}
