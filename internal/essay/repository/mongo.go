package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/essaypilot/essaypilot/internal/essay"
)

// MongoRepo implements Repository on two collections: essays and analyses.
// Records carry an "id" string field with a unique index (lookup key).
type MongoRepo struct {
	essays   *mongo.Collection
	analyses *mongo.Collection
}

func NewMongoRepo(essays, analyses *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	essays.Indexes().CreateOne(context.Background(), idx)
	analyses.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "essayId", Value: 1}, {Key: "createdAt", Value: -1}}})
	return &MongoRepo{essays: essays, analyses: analyses}
}

func (m *MongoRepo) CreateEssay(ctx context.Context, e *essay.Essay) (string, error) {
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := m.essays.InsertOne(ctx, e); err != nil {
		return "", err
	}
	return e.ID, nil
}

func (m *MongoRepo) GetEssay(ctx context.Context, id string) (*essay.Essay, error) {
	var e essay.Essay
	err := m.essays.FindOne(ctx, bson.M{"id": id}).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (m *MongoRepo) ListByOwner(ctx context.Context, userID string) ([]*essay.Essay, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := m.essays.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*essay.Essay{}
	for cur.Next(ctx) {
		var e essay.Essay
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, cur.Err()
}

func (m *MongoRepo) UpdateEssay(ctx context.Context, e *essay.Essay) error {
	e.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"title":     e.Title,
		"content":   e.Content,
		"updatedAt": e.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if e.TargetUniversity != nil {
		set["targetUniversity"] = *e.TargetUniversity
	} else {
		update["$unset"] = bson.M{"targetUniversity": ""}
	}
	res, err := m.essays.UpdateOne(ctx, bson.M{"id": e.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEssay removes the essay and cascades to its analyses.
func (m *MongoRepo) DeleteEssay(ctx context.Context, id string) error {
	res, err := m.essays.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = m.analyses.DeleteMany(ctx, bson.M{"essayId": id})
	return err
}

func (m *MongoRepo) InsertAnalysis(ctx context.Context, a *essay.Analysis) (string, error) {
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Suggestions == nil {
		a.Suggestions = []essay.Suggestion{}
	}
	if _, err := m.analyses.InsertOne(ctx, a); err != nil {
		return "", err
	}
	return a.ID, nil
}

func (m *MongoRepo) LatestAnalysis(ctx context.Context, essayID string) (*essay.Analysis, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var a essay.Analysis
	err := m.analyses.FindOne(ctx, bson.M{"essayId": essayID}, opts).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
