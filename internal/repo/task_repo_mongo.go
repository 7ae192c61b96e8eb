package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskhub/internal/domain"
)

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	User        primitive.ObjectID `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDoc) toDomain() *domain.Task {
	return &domain.Task{
		ID: d.ID.Hex(), UserID: d.User.Hex(), Title: d.Title, Description: d.Description, DueDate: d.DueDate,
		Status: domain.TaskStatus(d.Status), Priority: domain.TaskPriority(d.Priority),
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

type MongoTaskRepo struct{ coll *mongo.Collection }

func NewMongoTaskRepo(db *mongo.Database) *MongoTaskRepo {
	return &MongoTaskRepo{coll: db.Collection("tasks")}
}

func (r *MongoTaskRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

func (r *MongoTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return fmt.Errorf("MongoTaskRepo.Create: %w", err)
	}
	owner, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return fmt.Errorf("MongoTaskRepo.Create owner: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	d := taskDoc{
		ID: oid, User: owner, Title: t.Title, Description: t.Description, DueDate: t.DueDate,
		Status: string(t.Status), Priority: string(t.Priority), CreatedAt: now, UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("MongoTaskRepo.Create: %w", err)
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (r *MongoTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var d taskDoc
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("MongoTaskRepo.FindByID: %w", err)
	}
	return d.toDomain(), nil
}

func (r *MongoTaskRepo) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Task{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"user": owner}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("MongoTaskRepo.ListByUser: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("MongoTaskRepo.ListByUser: %w", err)
	}
	out := make([]domain.Task, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toDomain())
	}
	return out, nil
}

func (r *MongoTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return fmt.Errorf("MongoTaskRepo.Update: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"title": t.Title, "description": t.Description,
		"status": string(t.Status), "priority": string(t.Priority), "updatedAt": now,
	}
	update := bson.M{"$set": set}
	if t.DueDate != nil {
		set["dueDate"] = *t.DueDate
	} else {
		update["$unset"] = bson.M{"dueDate": ""}
	}
	if _, err := r.coll.UpdateByID(ctx, oid, update); err != nil {
		return fmt.Errorf("MongoTaskRepo.Update: %w", err)
	}
	t.UpdatedAt = now
	return nil
}

func (r *MongoTaskRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("MongoTaskRepo.Delete: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoTaskRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"user": owner})
	if err != nil {
		return 0, fmt.Errorf("MongoTaskRepo.DeleteByUser: %w", err)
	}
	return res.DeletedCount, nil
}
