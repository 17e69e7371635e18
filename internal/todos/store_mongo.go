package todos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	defaultMongoDatabase = "todoapp"
	mongoCollection      = "todos"
)

// MongoStore persists todos as documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoTodo struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d mongoTodo) todo() Todo {
	return Todo{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	uri = strings.TrimSpace(uri)
	dbName, err := mongoDatabaseName(uri)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(dbName).Collection(mongoCollection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_todos_created"),
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("init todo indexes: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// mongoDatabaseName reads the database from the URI path, falling back to
// the default database when the URI names none.
func mongoDatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if strings.TrimSpace(cs.Database) == "" {
		return defaultMongoDatabase, nil
	}
	return cs.Database, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Todo, error) {
	cur, err := s.coll.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, unavailable("find todos", err)
	}
	var docs []mongoTodo
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable("decode todos", err)
	}
	out := make([]Todo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.todo())
	}
	return out, nil
}

func (s *MongoStore) Create(ctx context.Context, title string) (Todo, error) {
	title, err := NormalizeTitle(title)
	if err != nil {
		return Todo{}, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := mongoTodo{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return Todo{}, unavailable("insert todo", err)
	}
	return doc.todo(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Todo, error) {
	oid, ok := objectID(id)
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	var doc mongoTodo
	if err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return Todo{}, s.mapErr("get todo", err)
	}
	return doc.todo(), nil
}

func (s *MongoStore) Update(ctx context.Context, id string, patch Patch) (Todo, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return Todo{}, err
	}
	oid, ok := objectID(id)
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	return s.findOneAndUpdate(ctx, oid, bson.D{{Key: "$set", Value: set}}, "update todo")
}

func (s *MongoStore) Toggle(ctx context.Context, id string) (Todo, error) {
	oid, ok := objectID(id)
	if !ok {
		return Todo{}, ErrStoreNotFound
	}
	// Aggregation-pipeline update flips the flag server-side in one round trip.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "completed", Value: bson.D{{Key: "$not", Value: bson.A{"$completed"}}}},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	}
	return s.findOneAndUpdate(ctx, oid, update, "toggle todo")
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return ErrStoreNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return unavailable("delete todo", err)
	}
	if res.DeletedCount == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (s *MongoStore) DeleteCompleted(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "completed", Value: true}})
	if err != nil {
		return 0, unavailable("delete completed todos", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return unavailable("ping mongo", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findOneAndUpdate(ctx context.Context, oid primitive.ObjectID, update any, op string) (Todo, error) {
	var doc mongoTodo
	err := s.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return Todo{}, s.mapErr(op, err)
	}
	return doc.todo(), nil
}

func (s *MongoStore) mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrStoreNotFound
	}
	return unavailable(op, err)
}

// objectID parses a todo id. Ids that are not ObjectIDs cannot exist in the
// collection, so callers treat them as not found.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
