package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GenericRepository implements ports.Repository for any bson-taggable entity
// type. Entities must map their id field to "_id" (string) and carry a
// "deleted" bool used as the soft-delete tombstone. Reads exclude
// tombstoned records; Delete removes physically, DeleteSoft marks.
type GenericRepository[T any] struct {
	coll     *mongo.Collection
	notFound error
}

// NewGenericRepository binds the repository to a collection. notFound is the
// domain error returned when a lookup misses, so each entity keeps its own
// sentinel.
func NewGenericRepository[T any](db *mongo.Database, collection string, notFound error) *GenericRepository[T] {
	return &GenericRepository[T]{coll: db.Collection(collection), notFound: notFound}
}

// alive filters out soft-deleted records.
func alive(extra bson.M) bson.M {
	filter := bson.M{"deleted": bson.M{"$ne": true}}
	for k, v := range extra {
		filter[k] = v
	}
	return filter
}

func (r *GenericRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	cur, err := r.coll.Find(ctx, alive(nil))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	defer cur.Close(ctx)

	entities := make([]T, 0)
	if err := cur.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
	}
	return entities, nil
}

func (r *GenericRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.coll.FindOne(ctx, alive(bson.M{"_id": id})).Decode(&entity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("find %s: %w", r.coll.Name(), err)
	}
	return &entity, nil
}

func (r *GenericRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	doc, err := toDoc(entity)
	if err != nil {
		return nil, err
	}
	id := primitive.NewObjectID().Hex()
	doc["_id"] = id
	doc["deleted"] = false

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}
	return r.GetByID(ctx, id)
}

func (r *GenericRepository[T]) Update(ctx context.Context, id string, entity *T) (*T, error) {
	doc, err := toDoc(entity)
	if err != nil {
		return nil, err
	}
	// Identity and tombstone state are not updatable through this path.
	delete(doc, "_id")
	delete(doc, "deleted")
	delete(doc, "created_at")

	res, err := r.coll.UpdateOne(ctx, alive(bson.M{"_id": id}), bson.M{"$set": doc})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return nil, r.notFound
	}
	return r.GetByID(ctx, id)
}

func (r *GenericRepository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r *GenericRepository[T]) DeleteSoft(ctx context.Context, id string) (*T, error) {
	var entity T
	err := r.coll.FindOneAndUpdate(ctx,
		alive(bson.M{"_id": id}),
		bson.M{"$set": bson.M{"deleted": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&entity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("soft delete %s: %w", r.coll.Name(), err)
	}
	return &entity, nil
}

// toDoc round-trips an entity through bson so individual fields can be
// addressed generically.
func toDoc[T any](entity *T) (bson.M, error) {
	raw, err := bson.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("marshal entity: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return doc, nil
}
