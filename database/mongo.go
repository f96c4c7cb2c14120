package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/KazanKK/dataferry/internal/dataset"
)

// MongoStore is a Store over one MongoDB database. Collections play the
// part of tables; each document is one row.
type MongoStore struct {
	client   *mongo.Client
	database string
	target   string
	logger   *slog.Logger
}

func mongoClientOptions(d ConnectionDescriptor, timeout time.Duration) *options.ClientOptions {
	opts := options.Client().
		SetHosts([]string{d.Address()}).
		SetDirect(true)
	if d.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   d.Username,
			Password:   d.Password,
			AuthSource: "admin",
		})
	}
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}
	return opts
}

func newMongoStore(client *mongo.Client, database, target string, logger *slog.Logger) *MongoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoStore{
		client:   client,
		database: database,
		target:   target,
		logger:   logger.With("backend", KindMongo.String()),
	}
}

func (m *MongoStore) log(format string, args ...interface{}) {
	m.logger.Info(fmt.Sprintf(format, args...))
}

func (m *MongoStore) Kind() Kind { return KindMongo }

func (m *MongoStore) Describe() string { return m.target }

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *MongoStore) collection(name string) *mongo.Collection {
	return m.client.Database(m.database).Collection(name)
}

// ReadTable loads every document of the collection. The generated _id field
// is left out; the column set is the union of keys in first-seen order. A
// missing collection, or one with no fields besides _id, is an error rather
// than a dataset without columns.
func (m *MongoStore) ReadTable(ctx context.Context, table string) (*dataset.Dataset, error) {
	exists, err := m.collectionExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return collectionDataset(table, false, nil)
	}

	cursor, err := m.collection(table).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", table, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", table, err)
	}

	ds, err := collectionDataset(table, true, docs)
	if err != nil {
		return nil, err
	}
	m.log("Read %d documents from collection %s", ds.Len(), table)
	return ds, nil
}

func (m *MongoStore) collectionExists(ctx context.Context, table string) (bool, error) {
	names, err := m.client.Database(m.database).ListCollectionNames(ctx, bson.D{{Key: "name", Value: table}})
	if err != nil {
		return false, fmt.Errorf("listing collections: %w", err)
	}
	return len(names) > 0, nil
}

func collectionDataset(table string, exists bool, docs []bson.D) (*dataset.Dataset, error) {
	if !exists {
		return nil, fmt.Errorf("collection %s does not exist", table)
	}
	ds, err := fromDocuments(docs)
	if err != nil {
		return nil, fmt.Errorf("building dataset from %s: %w", table, err)
	}
	if ds.Width() == 0 {
		return nil, fmt.Errorf("collection %s has no fields to read columns from", table)
	}
	return ds, nil
}

// ReplaceTable drops the collection and bulk-inserts ds. Unlike the SQL
// stores this is not atomic: a failed insert leaves the collection partly
// filled.
func (m *MongoStore) ReplaceTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	coll := m.collection(table)
	if err := coll.Drop(ctx); err != nil {
		return fmt.Errorf("dropping collection %s: %w", table, err)
	}
	if ds.Len() == 0 {
		if err := m.client.Database(m.database).CreateCollection(ctx, table); err != nil {
			return fmt.Errorf("creating collection %s: %w", table, err)
		}
		m.log("Created empty collection %s", table)
		return nil
	}
	return m.insert(ctx, coll, ds)
}

// AppendTable inserts ds, creating the collection when it does not exist.
func (m *MongoStore) AppendTable(ctx context.Context, table string, ds *dataset.Dataset) error {
	if ds.Len() > 0 {
		return m.insert(ctx, m.collection(table), ds)
	}

	exists, err := m.collectionExists(ctx, table)
	if err != nil || exists {
		return err
	}
	if err := m.client.Database(m.database).CreateCollection(ctx, table); err != nil {
		return fmt.Errorf("creating collection %s: %w", table, err)
	}
	return nil
}

func (m *MongoStore) insert(ctx context.Context, coll *mongo.Collection, ds *dataset.Dataset) error {
	res, err := coll.InsertMany(ctx, toDocuments(ds))
	if err != nil {
		return fmt.Errorf("inserting into collection %s: %w", coll.Name(), err)
	}
	m.log("Successfully inserted %d documents into collection %s", len(res.InsertedIDs), coll.Name())
	return nil
}

// toDocuments turns each row into a document with fields in column order.
// Missing values are stored as explicit nulls so the column survives a
// read back.
func toDocuments(ds *dataset.Dataset) []interface{} {
	names := ds.Names()
	docs := make([]interface{}, 0, ds.Len())
	_ = ds.Each(func(_ int, row []any) error {
		doc := make(bson.D, len(row))
		for i, v := range row {
			doc[i] = bson.E{Key: names[i], Value: v}
		}
		docs = append(docs, doc)
		return nil
	})
	return docs
}

func fromDocuments(docs []bson.D) (*dataset.Dataset, error) {
	var names []string
	index := map[string]int{}
	for _, doc := range docs {
		for _, e := range doc {
			if e.Key == "_id" {
				continue
			}
			if _, ok := index[e.Key]; !ok {
				index[e.Key] = len(names)
				names = append(names, e.Key)
			}
		}
	}

	rows := make([][]any, len(docs))
	for r, doc := range docs {
		row := make([]any, len(names))
		for _, e := range doc {
			i, ok := index[e.Key]
			if !ok {
				continue
			}
			v, err := bsonValue(e.Value)
			if err != nil {
				return nil, fmt.Errorf("document %d field %s: %w", r+1, e.Key, err)
			}
			row[i] = v
		}
		rows[r] = row
	}
	return dataset.New(names, rows)
}

// bsonValue maps a decoded BSON value onto the scalar types a Dataset holds.
// Nested documents and arrays are kept as relaxed extended JSON text.
func bsonValue(v interface{}) (any, error) {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil, nil
	case string, bool, int32, int64, float64:
		return x, nil
	case primitive.DateTime:
		return x.Time().UTC(), nil
	case primitive.ObjectID:
		return x.Hex(), nil
	case primitive.Decimal128:
		return x.String(), nil
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC(), nil
	case primitive.Binary:
		return fmt.Sprintf("%x", x.Data), nil
	case bson.D, bson.A, bson.M:
		out, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: x}}, false, false)
		if err != nil {
			return nil, err
		}
		s := strings.TrimSuffix(strings.TrimPrefix(string(out), `{"v":`), "}")
		return s, nil
	default:
		return fmt.Sprint(x), nil
	}
}
